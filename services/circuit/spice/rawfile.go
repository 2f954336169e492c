// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spice

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// variable is one column of the rawfile Values section.
type variable struct {
	name string
}

// ParseRawfile decodes an ngspice ASCII rawfile into raw node/branch
// vectors. The format is a header of "Key: value" lines, a Variables
// section listing one indexed name per output vector, and a Values
// section with No. Points blocks of No. Variables values each. Complex
// values are written as "real,imag".
func ParseRawfile(data []byte) (*RawResult, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		vars      []variable
		numVars   = -1
		numPoints = -1
		isComplex bool
	)

	// Header and Variables section.
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Flags:"):
			isComplex = strings.Contains(trimmed, "complex")
		case strings.HasPrefix(trimmed, "No. Variables:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, "No. Variables:")))
			if err != nil {
				return nil, fmt.Errorf("rawfile: bad variable count: %w", err)
			}
			numVars = n
		case strings.HasPrefix(trimmed, "No. Points:"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, "No. Points:")))
			if err != nil {
				return nil, fmt.Errorf("rawfile: bad point count: %w", err)
			}
			numPoints = n
		case trimmed == "Variables:":
			if numVars < 0 {
				return nil, fmt.Errorf("rawfile: Variables section before No. Variables")
			}
			for i := 0; i < numVars && scanner.Scan(); i++ {
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return nil, fmt.Errorf("rawfile: malformed variable line %q", scanner.Text())
				}
				vars = append(vars, variable{name: fields[1]})
			}
		case trimmed == "Binary:":
			return nil, fmt.Errorf("rawfile: binary format not supported, expected ascii")
		case trimmed == "Values:":
			return parseValues(scanner, vars, numPoints, isComplex)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("rawfile: %w", err)
	}
	return nil, fmt.Errorf("rawfile: no Values section found")
}

func parseValues(scanner *bufio.Scanner, vars []variable, numPoints int, isComplex bool) (*RawResult, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("rawfile: Values section without variables")
	}
	if numPoints < 0 {
		return nil, fmt.Errorf("rawfile: Values section before No. Points")
	}

	cols := make([]Vector, len(vars))
	for i := range cols {
		cols[i].Real = make([]float64, 0, numPoints)
		if isComplex {
			cols[i].Imag = make([]float64, 0, numPoints)
		}
	}

	for point := 0; point < numPoints; point++ {
		for v := 0; v < len(vars); v++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("rawfile: truncated at point %d of %d", point, numPoints)
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				v-- // tolerate blank separator lines between points
				continue
			}
			// The first value of each point is prefixed with the point index.
			value := fields[len(fields)-1]
			re, im, err := parseValue(value, isComplex)
			if err != nil {
				return nil, fmt.Errorf("rawfile: point %d variable %s: %w", point, vars[v].name, err)
			}
			cols[v].Real = append(cols[v].Real, re)
			if isComplex {
				cols[v].Imag = append(cols[v].Imag, im)
			}
		}
	}

	result := &RawResult{
		Complex:  isComplex,
		Nodes:    make(map[string]Vector),
		Branches: make(map[string]Vector),
	}
	for i, v := range vars {
		name, class := classifyVariable(v.name)
		switch class {
		case classScale:
			result.ScaleName = name
			result.Scale = cols[i].Real
		case classBranch:
			result.Branches[name] = cols[i]
		default:
			result.Nodes[name] = cols[i]
		}
	}
	return result, nil
}

func parseValue(s string, isComplex bool) (re, im float64, err error) {
	if isComplex {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("expected complex pair, got %q", s)
		}
		if re, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, 0, err
		}
		im, err = strconv.ParseFloat(parts[1], 64)
		return re, im, err
	}
	re, err = strconv.ParseFloat(s, 64)
	return re, 0, err
}

type variableClass int

const (
	classNode variableClass = iota
	classBranch
	classScale
)

// classifyVariable maps a rawfile vector name to its role and canonical
// key: "time"/"frequency"/"*-sweep" are scales, "x#branch" and "i(x)"
// are branch currents keyed by element name, "v(x)" and bare names are
// node voltages.
func classifyVariable(raw string) (string, variableClass) {
	lower := strings.ToLower(raw)
	switch {
	case lower == "time", lower == "frequency", strings.HasSuffix(lower, "sweep"):
		return lower, classScale
	case strings.HasSuffix(lower, "#branch"):
		return strings.TrimSuffix(lower, "#branch"), classBranch
	case strings.HasPrefix(lower, "i(") && strings.HasSuffix(lower, ")"):
		return lower[2 : len(lower)-1], classBranch
	case strings.HasPrefix(lower, "v(") && strings.HasSuffix(lower, ")"):
		return lower[2 : len(lower)-1], classNode
	}
	return raw, classNode
}
