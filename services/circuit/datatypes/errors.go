// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"errors"
	"fmt"
)

// Sentinel errors for circuit lookups.
var (
	// ErrCircuitNotFound is returned when a circuit id does not exist.
	ErrCircuitNotFound = errors.New("circuit not found")

	// ErrComponentNotFound is returned when a component name does not
	// exist in the addressed circuit.
	ErrComponentNotFound = errors.New("component not found")

	// ErrVersionNotFound is returned when a requested circuit version is
	// neither the live version nor present in history.
	ErrVersionNotFound = errors.New("circuit version not found")
)

// ValidationError reports a malformed component definition, missing or
// malformed analysis parameters, an unsupported analysis kind, or a
// malformed image format request. It is never retried automatically and
// is surfaced verbatim to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// SimulationError reports an external solver failure or timeout. Msg
// carries the solver's diagnostic text; the wrapped error, when present,
// is the low-level cause (exec failure, context deadline).
type SimulationError struct {
	Msg string
	Err error
}

func (e *SimulationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("simulation failed: %s: %v", e.Msg, e.Err)
	}
	return "simulation failed: " + e.Msg
}

func (e *SimulationError) Unwrap() error { return e.Err }

// NewSimulationError wraps a solver diagnostic into the taxonomy.
func NewSimulationError(msg string, cause error) *SimulationError {
	return &SimulationError{Msg: msg, Err: cause}
}

// IsSimulation reports whether err is (or wraps) a SimulationError.
func IsSimulation(err error) bool {
	var s *SimulationError
	return errors.As(err, &s)
}
