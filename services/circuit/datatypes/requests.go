// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Request and response types for the circuit HTTP API.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// circuitValidate is the shared validator instance for circuit datatypes.
var circuitValidate *validator.Validate

func init() {
	circuitValidate = validator.New()
}

// AnalysisKind selects one of the four supported analysis modes.
type AnalysisKind string

const (
	AnalysisOperatingPoint AnalysisKind = "operating_point"
	AnalysisDC             AnalysisKind = "dc"
	AnalysisAC             AnalysisKind = "ac"
	AnalysisTransient      AnalysisKind = "transient"
)

// CircuitCreateRequest is the body of POST /v1/circuits and
// PUT /v1/circuits/:id.
type CircuitCreateRequest struct {
	Name       string          `json:"name"`
	Components []ComponentSpec `json:"components"`
}

// ComponentAddRequest is the body of POST /v1/circuits/:id/components.
type ComponentAddRequest struct {
	Type       string     `json:"type" validate:"required"`
	Nodes      []string   `json:"nodes" validate:"required,min=1"`
	Value      *float64   `json:"value"`
	Parameters Parameters `json:"parameters"`
}

// Validate checks the structural shape of the request. Type/arity rules
// are enforced again by the circuit itself; this catches empty bodies
// before they reach the aggregate.
func (r *ComponentAddRequest) Validate() error {
	if err := circuitValidate.Struct(r); err != nil {
		return NewValidationError("invalid component request: %v", err)
	}
	return nil
}

// UVXAddRequest is the body of POST /v1/circuits/:id/uvx. Unlike raw
// component adds, the UVX endpoint rejects unknown subtypes up front.
type UVXAddRequest struct {
	UVXType    string     `json:"uvx_type" validate:"required,oneof=opamp comparator adc dac"`
	Nodes      []string   `json:"nodes" validate:"required,min=1"`
	Parameters Parameters `json:"parameters"`
}

// Validate rejects unknown UVX subtypes and empty node lists.
func (r *UVXAddRequest) Validate() error {
	if err := circuitValidate.Struct(r); err != nil {
		return NewValidationError("invalid UVX request: %v", err)
	}
	return nil
}

// MergedParameters folds the uvx_type into the parameter bag the way the
// component model stores it.
func (r *UVXAddRequest) MergedParameters() Parameters {
	params := r.Parameters.Clone()
	if params == nil {
		params = make(Parameters, 1)
	}
	params["uvx_type"] = r.UVXType
	return params
}

// SimulationRequest is the body of POST /v1/circuits/:id/simulate.
// Params is analysis-specific and validated by the dispatcher.
type SimulationRequest struct {
	Analysis string         `json:"analysis"`
	Params   map[string]any `json:"params"`
}

// Kind normalizes the analysis tag, defaulting to operating_point the
// way the reference service did.
func (r *SimulationRequest) Kind() AnalysisKind {
	if r.Analysis == "" {
		return AnalysisOperatingPoint
	}
	return AnalysisKind(r.Analysis)
}

// RenameRequest is the body of PATCH /v1/circuits/:id when the name is
// sent as JSON instead of a query parameter.
type RenameRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *RenameRequest) Validate() error {
	if err := circuitValidate.Struct(r); err != nil {
		return NewValidationError("invalid rename request: %v", err)
	}
	return nil
}

// CircuitResponse is the wire form of a circuit snapshot.
type CircuitResponse struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	Components []Component `json:"components"`
}

// ResponseFromSnapshot converts an aggregate snapshot to its wire form.
func ResponseFromSnapshot(s Snapshot) CircuitResponse {
	comps := s.Components
	if comps == nil {
		comps = []Component{}
	}
	return CircuitResponse{ID: s.ID, Name: s.Name, Version: s.Version, Components: comps}
}
