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
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
	"github.com/AleutianAI/CircuitLocal/services/circuit/observability"
	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

// DefaultTimeout bounds one solver invocation. The solver call is
// blocking and non-cancellable mid-flight, so a run that never returns
// is converted to a SimulationError at this deadline.
const DefaultTimeout = 30 * time.Second

// Runner validates analysis requests, hands translated decks to the
// solver, and normalizes raw output. A Runner is stateless and safe for
// concurrent use across independent circuits.
type Runner struct {
	solver  spice.Solver
	timeout time.Duration
	metrics *observability.Metrics
}

// NewRunner builds a Runner. A zero timeout selects DefaultTimeout;
// metrics may be nil.
func NewRunner(solver spice.Solver, timeout time.Duration, metrics *observability.Metrics) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{solver: solver, timeout: timeout, metrics: metrics}
}

// Run executes one analysis over a circuit snapshot.
//
// Parameter validation happens before translation and translation before
// the solver call, so an invalid request never reaches the solver and a
// partial deck is never handed over. Solver failures and timeouts
// surface as *datatypes.SimulationError, invalid requests as
// *datatypes.ValidationError.
func (r *Runner) Run(ctx context.Context, snap datatypes.Snapshot, kind datatypes.AnalysisKind, params map[string]any) (Result, error) {
	started := time.Now()
	result, err := r.run(ctx, snap, kind, params)
	r.metrics.ObserveSimulation(string(kind), statusOf(err), time.Since(started))
	return result, err
}

func (r *Runner) run(ctx context.Context, snap datatypes.Snapshot, kind datatypes.AnalysisKind, params map[string]any) (Result, error) {
	directive, err := buildDirective(kind, params)
	if err != nil {
		return nil, err
	}

	deck, err := netlist.Translate(snap.Name, snap.Components)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.solver.Run(ctx, deck, directive)
	if err != nil {
		if datatypes.IsSimulation(err) || datatypes.IsValidation(err) {
			return nil, err
		}
		// Never leak a raw low-level error type past this boundary.
		return nil, datatypes.NewSimulationError("solver invocation failed", err)
	}

	slog.Info("simulation complete",
		"circuit_id", snap.ID, "version", snap.Version,
		"analysis", string(kind), "points", max(len(raw.Scale), 1))
	return normalize(kind, raw, directive), nil
}

// buildDirective validates analysis parameters and produces the solver
// directive. Missing required parameters and unsupported kinds fail
// here, before any solver work.
func buildDirective(kind datatypes.AnalysisKind, params map[string]any) (spice.Directive, error) {
	p := analysisParams(params)
	switch kind {
	case datatypes.AnalysisOperatingPoint:
		return spice.Directive{Kind: kind}, nil

	case datatypes.AnalysisDC:
		source, ok := p.str("source")
		if !ok {
			return spice.Directive{}, datatypes.NewValidationError("dc analysis requires 'source', 'start', 'stop', 'step' parameters")
		}
		start, okStart := p.num("start")
		stop, okStop := p.num("stop")
		step, okStep := p.num("step")
		if !okStart || !okStop || !okStep {
			return spice.Directive{}, datatypes.NewValidationError("dc analysis requires 'source', 'start', 'stop', 'step' parameters")
		}
		if step == 0 {
			return spice.Directive{}, datatypes.NewValidationError("dc analysis 'step' must be non-zero")
		}
		return spice.Directive{Kind: kind, Source: source, Start: start, Stop: stop, Step: step}, nil

	case datatypes.AnalysisAC:
		start := p.numOr("start_frequency", 1)
		stop := p.numOr("stop_frequency", 1e6)
		points := int(p.numOr("points", 10))
		variation, _ := p.str("variation")
		if variation == "" {
			variation = "dec"
		}
		switch variation {
		case "dec", "oct", "lin":
		default:
			return spice.Directive{}, datatypes.NewValidationError("ac analysis 'variation' must be one of dec, oct, lin; got %q", variation)
		}
		if points < 1 {
			return spice.Directive{}, datatypes.NewValidationError("ac analysis 'points' must be positive")
		}
		if start <= 0 || stop <= 0 {
			return spice.Directive{}, datatypes.NewValidationError("ac analysis frequencies must be positive")
		}
		return spice.Directive{Kind: kind, StartFrequency: start, StopFrequency: stop, Points: points, Variation: variation}, nil

	case datatypes.AnalysisTransient:
		stepTime, okStep := p.num("step_time")
		endTime, okEnd := p.num("end_time")
		if !okStep || !okEnd {
			return spice.Directive{}, datatypes.NewValidationError("transient analysis requires 'step_time' and 'end_time' parameters")
		}
		if stepTime <= 0 || endTime <= 0 {
			return spice.Directive{}, datatypes.NewValidationError("transient analysis times must be positive")
		}
		return spice.Directive{Kind: kind, StepTime: stepTime, EndTime: endTime}, nil
	}
	return spice.Directive{}, datatypes.NewValidationError("unsupported analysis kind %q", string(kind))
}

// analysisParams wraps the request parameter map with tolerant readers.
// JSON decoding yields float64 for every number; direct Go callers may
// pass ints.
type analysisParams map[string]any

func (p analysisParams) num(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (p analysisParams) numOr(key string, def float64) float64 {
	if v, ok := p.num(key); ok {
		return v
	}
	return def
}

func (p analysisParams) str(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok && s != ""
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case datatypes.IsValidation(err):
		return "validation_error"
	case datatypes.IsSimulation(err):
		return "simulation_error"
	}
	return "error"
}
