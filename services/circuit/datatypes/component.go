// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the circuit domain model for the circuit service.
//
// This file contains the Component record and its validation rules. For the
// versioned Circuit aggregate, see circuit.go. For API request/response
// types, see requests.go.
package datatypes

import (
	"fmt"
	"math"
	"strings"
)

// ComponentType is the single-letter SPICE element class of a component.
type ComponentType string

const (
	TypeResistor      ComponentType = "R"
	TypeCapacitor     ComponentType = "C"
	TypeInductor      ComponentType = "L"
	TypeVoltageSource ComponentType = "V"
	TypeCurrentSource ComponentType = "I"
	TypeDiode         ComponentType = "D"
	TypeBJT           ComponentType = "Q"
	TypeMOSFET        ComponentType = "M"
	TypeSubcircuit    ComponentType = "X"
	TypeUVX           ComponentType = "U"
)

// componentTypes is the closed set of accepted type tags.
var componentTypes = map[ComponentType]bool{
	TypeResistor: true, TypeCapacitor: true, TypeInductor: true,
	TypeVoltageSource: true, TypeCurrentSource: true, TypeDiode: true,
	TypeBJT: true, TypeMOSFET: true, TypeSubcircuit: true, TypeUVX: true,
}

// NormalizeType uppercases a raw type tag and reports whether it is one of
// the accepted component types.
func NormalizeType(raw string) (ComponentType, bool) {
	t := ComponentType(strings.ToUpper(strings.TrimSpace(raw)))
	return t, componentTypes[t]
}

// UVX subtype tags (the uvx_type parameter of a U component).
const (
	UVXOpAmp      = "opamp"
	UVXComparator = "comparator"
	UVXADC        = "adc"
	UVXDAC        = "dac"
)

// KnownUVXType reports whether the tag names a UVX subtype the translator
// can synthesize.
func KnownUVXType(tag string) bool {
	switch tag {
	case UVXOpAmp, UVXComparator, UVXADC, UVXDAC:
		return true
	}
	return false
}

// Parameters is the open-ended parameter bag of a component. Keys and
// meaning depend on the component type (and, for U components, on the
// uvx_type entry). Typed accessor views with documented defaults live in
// params.go; the map form is kept on the wire so callers can attach
// free-form extension fields.
type Parameters map[string]any

// Float reads a numeric parameter. JSON decoding produces float64, but
// values set directly from Go code may be ints.
func (p Parameters) Float(key string, def float64) float64 {
	if p == nil {
		return def
	}
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// String reads a string parameter.
func (p Parameters) String(key, def string) string {
	if p == nil {
		return def
	}
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Clone returns an independent shallow copy of the bag. Parameter values
// are scalars on every supported path, so a per-key copy is a deep copy
// in practice.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Component is one circuit element. Name is assigned exactly once by the
// owning Circuit and never changes afterwards.
type Component struct {
	Name       string        `json:"name"`
	Type       ComponentType `json:"type"`
	Nodes      []string      `json:"nodes"`
	Value      *float64      `json:"value,omitempty"`
	Parameters Parameters    `json:"parameters,omitempty"`
}

// Clone returns a deep, independent copy of the component.
func (c Component) Clone() Component {
	out := c
	out.Nodes = append([]string(nil), c.Nodes...)
	out.Value = cloneFloat(c.Value)
	out.Parameters = c.Parameters.Clone()
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// ValidateComponent checks a component definition before it is committed
// to a circuit: the type tag must be known, the node list must have the
// arity the type demands, and types that carry a magnitude must have a
// finite numeric value. It returns a *ValidationError describing the
// first problem found.
func ValidateComponent(typ ComponentType, nodes []string, value *float64, params Parameters) error {
	if !componentTypes[typ] {
		return NewValidationError("unknown component type %q", string(typ))
	}
	if len(nodes) == 0 {
		return NewValidationError("component type %s requires a non-empty node list", typ)
	}
	for i, n := range nodes {
		if strings.TrimSpace(n) == "" {
			return NewValidationError("component type %s has an empty node identifier at position %d", typ, i)
		}
	}

	if want, exact := requiredArity(typ, params); exact {
		if len(nodes) != want {
			return NewValidationError("component type %s requires exactly %d nodes, got %d",
				describeType(typ, params), want, len(nodes))
		}
	} else if len(nodes) < want {
		return NewValidationError("component type %s requires at least %d nodes, got %d",
			describeType(typ, params), want, len(nodes))
	}

	if requiresValue(typ, params) {
		if value == nil {
			return NewValidationError("component type %s requires a numeric value", typ)
		}
	}
	if value != nil && (math.IsNaN(*value) || math.IsInf(*value, 0)) {
		return NewValidationError("component type %s has a non-finite value", typ)
	}
	return nil
}

// requiredArity returns the node count a type demands and whether the
// count is exact (true) or a minimum (false).
func requiredArity(typ ComponentType, params Parameters) (int, bool) {
	switch typ {
	case TypeResistor, TypeCapacitor, TypeInductor,
		TypeVoltageSource, TypeCurrentSource, TypeDiode:
		return 2, true
	case TypeBJT:
		return 3, true
	case TypeMOSFET:
		return 4, true
	case TypeUVX:
		switch params.String("uvx_type", "") {
		case UVXOpAmp:
			// out, in-, in+; supply pins beyond the third are tolerated.
			return 3, false
		case UVXComparator:
			return 3, true
		case UVXADC, UVXDAC:
			return 2, true
		}
		return 1, false
	default: // X and future tags
		return 1, false
	}
}

// requiresValue reports whether the type needs a numeric magnitude. A
// voltage source may omit value when sine or pulse parameters carry the
// amplitude instead.
func requiresValue(typ ComponentType, params Parameters) bool {
	switch typ {
	case TypeResistor, TypeCapacitor, TypeInductor, TypeCurrentSource:
		return true
	case TypeVoltageSource:
		switch params.String("type", "") {
		case SourceSine, SourcePulse:
			return false
		}
		return true
	}
	return false
}

func describeType(typ ComponentType, params Parameters) string {
	if typ == TypeUVX {
		if sub := params.String("uvx_type", ""); sub != "" {
			return fmt.Sprintf("U(%s)", sub)
		}
	}
	return string(typ)
}
