// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package spice is the boundary to the external SPICE-compatible solver.
//
// The service never solves circuit equations itself. It hands a
// translated deck plus an analysis directive to a Solver and receives
// raw numeric vectors keyed by node and branch name. The production
// implementation shells out to ngspice in batch mode (ngspice.go) and
// parses its ASCII rawfile output (rawfile.go); tests substitute an
// in-memory fake.
package spice

import (
	"context"
	"fmt"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
)

// Directive is one analysis instruction for the solver. Only the fields
// of the selected Kind are meaningful; the dispatcher validates them
// before a Directive is built.
type Directive struct {
	Kind datatypes.AnalysisKind

	// DC sweep
	Source string
	Start  float64
	Stop   float64
	Step   float64

	// AC sweep
	StartFrequency float64
	StopFrequency  float64
	Points         int
	Variation      string // dec, oct, lin

	// Transient
	StepTime float64
	EndTime  float64
}

// Line renders the directive as the solver's analysis dot-line.
func (d Directive) Line() (string, error) {
	switch d.Kind {
	case datatypes.AnalysisOperatingPoint:
		return ".op", nil
	case datatypes.AnalysisDC:
		return fmt.Sprintf(".dc %s %g %g %g", d.Source, d.Start, d.Stop, d.Step), nil
	case datatypes.AnalysisAC:
		return fmt.Sprintf(".ac %s %d %g %g", d.Variation, d.Points, d.StartFrequency, d.StopFrequency), nil
	case datatypes.AnalysisTransient:
		return fmt.Sprintf(".tran %g %g", d.StepTime, d.EndTime), nil
	}
	return "", fmt.Errorf("no directive line for analysis kind %q", d.Kind)
}

// Vector is one raw output series. Imag is nil except for AC output.
type Vector struct {
	Real []float64
	Imag []float64
}

// Len returns the number of points in the vector.
func (v Vector) Len() int { return len(v.Real) }

// RawResult is the solver's output before normalization: one optional
// scale vector (time, frequency, or the swept source value) and one
// vector per node and per branch.
type RawResult struct {
	ScaleName string
	Scale     []float64
	Complex   bool
	Nodes     map[string]Vector
	Branches  map[string]Vector
}

// Solver runs one analysis over a translated deck. Implementations must
// honor ctx cancellation and return the solver's diagnostic text inside
// a *datatypes.SimulationError on failure.
type Solver interface {
	Run(ctx context.Context, deck *netlist.Deck, directive Directive) (*RawResult, error)
}
