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
	"testing"

	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

func TestNormalizeOperatingPoint_ExcludesGround(t *testing.T) {
	raw := &spice.RawResult{
		Nodes: map[string]spice.Vector{
			"out":    {Real: []float64{2.5}},
			"0":      {Real: []float64{0}},
			"gnd":    {Real: []float64{0}},
			"Ground": {Real: []float64{0}},
		},
		Branches: map[string]spice.Vector{
			"v1": {Real: []float64{-0.001}},
		},
	}
	op := normalizeOperatingPoint(raw)
	if len(op.Nodes) != 1 {
		t.Errorf("nodes = %v, ground aliases must be excluded", op.Nodes)
	}
	if op.Nodes["out"] != 2.5 {
		t.Errorf("out = %v", op.Nodes["out"])
	}
	if op.Branches["v1"] != -0.001 {
		t.Errorf("v1 = %v", op.Branches["v1"])
	}
}

func TestNormalizeSweep_CopiesSeries(t *testing.T) {
	scale := []float64{0, 1, 2}
	series := []float64{0, 0.5, 1}
	raw := &spice.RawResult{
		Scale: scale,
		Nodes: map[string]spice.Vector{
			"out": {Real: series},
		},
		Branches: map[string]spice.Vector{},
	}
	sweep := normalizeSweep(raw, "V1")

	// Mutating the raw vectors must not change the normalized result.
	scale[0] = 99
	series[0] = 99
	if sweep.Sweep.Values[0] != 0 || sweep.Nodes["out"][0] != 0 {
		t.Error("normalized result aliases solver buffers")
	}
	if sweep.Sweep.Source != "V1" {
		t.Errorf("source = %q", sweep.Sweep.Source)
	}
}

func TestToSpectrum_MagnitudeAndPhase(t *testing.T) {
	vec := spice.Vector{
		Real: []float64{1, 0, -1, 3},
		Imag: []float64{0, 1, 0, 4},
	}
	s := toSpectrum(vec)

	wantMag := []float64{1, 1, 1, 5}
	wantPhase := []float64{0, 90, 180, math.Atan2(4, 3) * 180 / math.Pi}
	for i := range wantMag {
		if math.Abs(s.Magnitude[i]-wantMag[i]) > 1e-12 {
			t.Errorf("magnitude[%d] = %v, want %v", i, s.Magnitude[i], wantMag[i])
		}
		if math.Abs(s.PhaseDegrees[i]-wantPhase[i]) > 1e-12 {
			t.Errorf("phase[%d] = %v, want %v", i, s.PhaseDegrees[i], wantPhase[i])
		}
	}
}

func TestToSpectrum_RealOnlyVector(t *testing.T) {
	s := toSpectrum(spice.Vector{Real: []float64{2, -2}})
	if s.Magnitude[0] != 2 || s.Magnitude[1] != 2 {
		t.Errorf("magnitude = %v", s.Magnitude)
	}
	if s.PhaseDegrees[0] != 0 || s.PhaseDegrees[1] != 180 {
		t.Errorf("phase = %v", s.PhaseDegrees)
	}
}

func TestNormalizeTransient(t *testing.T) {
	raw := &spice.RawResult{
		ScaleName: "time",
		Scale:     []float64{0, 1e-4},
		Nodes: map[string]spice.Vector{
			"out": {Real: []float64{0, 2.5}},
			"0":   {Real: []float64{0, 0}},
		},
		Branches: map[string]spice.Vector{
			"v1": {Real: []float64{0, -1e-3}},
		},
	}
	tr := normalizeTransient(raw)
	if len(tr.Time) != 2 {
		t.Fatalf("time = %v", tr.Time)
	}
	if _, present := tr.Nodes["0"]; present {
		t.Error("ground leaked into transient nodes")
	}
	if tr.Nodes["out"][1] != 2.5 || tr.Branches["v1"][1] != -1e-3 {
		t.Errorf("series = %v / %v", tr.Nodes["out"], tr.Branches["v1"])
	}
}

func TestCopyFloats_NilBecomesEmpty(t *testing.T) {
	got := copyFloats(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("copyFloats(nil) = %v, want empty non-nil slice", got)
	}
}
