// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sim

import (
	"math"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

func normalizeOperatingPoint(raw *spice.RawResult) *OperatingPointResult {
	result := &OperatingPointResult{
		Nodes:    make(map[string]float64),
		Branches: make(map[string]float64),
	}
	for name, vec := range raw.Nodes {
		if netlist.IsGroundName(name) || vec.Len() == 0 {
			continue
		}
		result.Nodes[name] = vec.Real[0]
	}
	for name, vec := range raw.Branches {
		if vec.Len() == 0 {
			continue
		}
		result.Branches[name] = vec.Real[0]
	}
	return result
}

func normalizeSweep(raw *spice.RawResult, source string) *SweepResult {
	result := &SweepResult{
		Sweep:    SweepInfo{Source: source, Values: copyFloats(raw.Scale)},
		Nodes:    make(map[string][]float64),
		Branches: make(map[string][]float64),
	}
	for name, vec := range raw.Nodes {
		if netlist.IsGroundName(name) {
			continue
		}
		result.Nodes[name] = copyFloats(vec.Real)
	}
	for name, vec := range raw.Branches {
		result.Branches[name] = copyFloats(vec.Real)
	}
	return result
}

func normalizeAC(raw *spice.RawResult) *ACResult {
	result := &ACResult{
		Frequency: FrequencyInfo{Values: copyFloats(raw.Scale)},
		Nodes:     make(map[string]Spectrum),
		Branches:  make(map[string]Spectrum),
	}
	for name, vec := range raw.Nodes {
		if netlist.IsGroundName(name) {
			continue
		}
		result.Nodes[name] = toSpectrum(vec)
	}
	for name, vec := range raw.Branches {
		result.Branches[name] = toSpectrum(vec)
	}
	return result
}

func normalizeTransient(raw *spice.RawResult) *TransientResult {
	result := &TransientResult{
		Time:     copyFloats(raw.Scale),
		Nodes:    make(map[string][]float64),
		Branches: make(map[string][]float64),
	}
	for name, vec := range raw.Nodes {
		if netlist.IsGroundName(name) {
			continue
		}
		result.Nodes[name] = copyFloats(vec.Real)
	}
	for name, vec := range raw.Branches {
		result.Branches[name] = copyFloats(vec.Real)
	}
	return result
}

// toSpectrum reduces a complex vector to magnitude and phase-in-degrees
// series. A vector without an imaginary part normalizes with zero phase.
func toSpectrum(vec spice.Vector) Spectrum {
	n := vec.Len()
	s := Spectrum{
		Magnitude:    make([]float64, n),
		PhaseDegrees: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		re := vec.Real[i]
		var im float64
		if i < len(vec.Imag) {
			im = vec.Imag[i]
		}
		s.Magnitude[i] = math.Hypot(re, im)
		s.PhaseDegrees[i] = math.Atan2(im, re) * 180 / math.Pi
	}
	return s
}

func copyFloats(in []float64) []float64 {
	if in == nil {
		return []float64{}
	}
	return append([]float64(nil), in...)
}

// normalize selects the shape for the analysis kind.
func normalize(kind datatypes.AnalysisKind, raw *spice.RawResult, directive spice.Directive) Result {
	switch kind {
	case datatypes.AnalysisDC:
		return normalizeSweep(raw, directive.Source)
	case datatypes.AnalysisAC:
		return normalizeAC(raw)
	case datatypes.AnalysisTransient:
		return normalizeTransient(raw)
	}
	return normalizeOperatingPoint(raw)
}
