// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
)

// circuitFile is the on-disk circuit definition format. YAML keys match
// the HTTP API's JSON fields, so a saved API request body loads as-is.
type circuitFile struct {
	Name       string          `yaml:"name" json:"name"`
	Components []componentSpec `yaml:"components" json:"components"`
}

type componentSpec struct {
	Type       string               `yaml:"type" json:"type"`
	Nodes      []string             `yaml:"nodes" json:"nodes"`
	Value      *float64             `yaml:"value" json:"value"`
	Parameters datatypes.Parameters `yaml:"parameters" json:"parameters"`
}

// loadCircuitFile reads a YAML or JSON definition and builds the
// circuit, running full component validation in the process.
func loadCircuitFile(path string) (*datatypes.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading circuit file: %w", err)
	}

	var def circuitFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &def)
	} else {
		err = yaml.Unmarshal(data, &def)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing circuit file %s: %w", path, err)
	}
	if len(def.Components) == 0 {
		return nil, fmt.Errorf("circuit file %s defines no components", path)
	}

	name := def.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	circuit := datatypes.NewCircuit(0, name)
	for i, spec := range def.Components {
		if _, err := circuit.AddComponent(spec.Type, spec.Nodes, spec.Value, spec.Parameters); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
	}
	return circuit, nil
}

// analysisKind maps the --analysis flag onto the dispatcher's kinds.
// Unknown values pass through so the dispatcher produces its usual
// error message.
func analysisKind(s string) datatypes.AnalysisKind {
	if s == "" {
		return datatypes.AnalysisOperatingPoint
	}
	return datatypes.AnalysisKind(s)
}
