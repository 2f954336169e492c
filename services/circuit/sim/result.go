// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sim dispatches analysis requests to the external solver and
// normalizes its heterogeneous output into the canonical result schema.
package sim

import (
	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
)

// Result is the canonical normalized output of one analysis. The
// concrete shape depends on the analysis kind; all four shapes marshal
// to the stable wire schema.
type Result interface {
	Analysis() datatypes.AnalysisKind
}

// OperatingPointResult holds steady-state node voltages and branch
// currents. Ground-named nodes are excluded from Nodes.
type OperatingPointResult struct {
	Nodes    map[string]float64 `json:"nodes"`
	Branches map[string]float64 `json:"branches"`
}

func (*OperatingPointResult) Analysis() datatypes.AnalysisKind {
	return datatypes.AnalysisOperatingPoint
}

// SweepInfo identifies the swept source and its value at each point.
type SweepInfo struct {
	Source string    `json:"source"`
	Values []float64 `json:"values"`
}

// SweepResult holds a DC sweep: one value per sweep point for every
// non-ground node and every branch.
type SweepResult struct {
	Sweep    SweepInfo            `json:"sweep"`
	Nodes    map[string][]float64 `json:"nodes"`
	Branches map[string][]float64 `json:"branches"`
}

func (*SweepResult) Analysis() datatypes.AnalysisKind { return datatypes.AnalysisDC }

// FrequencyInfo lists the analysis frequencies.
type FrequencyInfo struct {
	Values []float64 `json:"values"`
}

// Spectrum is one complex-valued series reduced to magnitude and phase.
// Phase is atan2(imag, real) in degrees.
type Spectrum struct {
	Magnitude    []float64 `json:"magnitude"`
	PhaseDegrees []float64 `json:"phase_degrees"`
}

// ACResult holds a small-signal frequency sweep.
type ACResult struct {
	Frequency FrequencyInfo       `json:"frequency"`
	Nodes     map[string]Spectrum `json:"nodes"`
	Branches  map[string]Spectrum `json:"branches"`
}

func (*ACResult) Analysis() datatypes.AnalysisKind { return datatypes.AnalysisAC }

// TransientResult holds a time-domain simulation.
type TransientResult struct {
	Time     []float64            `json:"time"`
	Nodes    map[string][]float64 `json:"nodes"`
	Branches map[string][]float64 `json:"branches"`
}

func (*TransientResult) Analysis() datatypes.AnalysisKind { return datatypes.AnalysisTransient }
