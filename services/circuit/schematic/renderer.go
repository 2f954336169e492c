// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schematic renders a circuit's live component list as an image.
//
// Rendering is purely a function of current state with no feedback into
// the circuit. The layout is a deliberately naive two-pass placement:
// nodes get grid positions in order of first appearance, ground sits at
// the origin, and each two-terminal component draws as a labeled segment
// between its end nodes. The goal is a legible connectivity sketch, not
// publication-grade schematic capture.
package schematic

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
)

// supportedFormats are the raster/vector formats the plot backend can
// emit and the API accepts.
var supportedFormats = map[string]bool{"png": true, "svg": true, "pdf": true}

// ValidFormat reports whether the requested image format is supported.
func ValidFormat(format string) bool { return supportedFormats[format] }

type point struct{ x, y float64 }

// Render draws the snapshot's components into w in the requested format.
// An unsupported format fails with a ValidationError before any drawing.
func Render(snap datatypes.Snapshot, format string, w io.Writer) error {
	if !ValidFormat(format) {
		return datatypes.NewValidationError("unsupported image format %q: use png, svg, or pdf", format)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (v%d)", snap.Name, snap.Version)
	p.HideAxes()

	positions := placeNodes(snap.Components)
	labels := plotter.XYLabels{}

	for _, comp := range snap.Components {
		if comp.Type == datatypes.TypeUVX || len(comp.Nodes) < 2 {
			// UVX components have no single-glyph rendering; they expand
			// to submodels only at translation time.
			continue
		}
		a, okA := positions[netlist.NormalizeNode(comp.Nodes[0])]
		b, okB := positions[netlist.NormalizeNode(comp.Nodes[1])]
		if !okA || !okB {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{{X: a.x, Y: a.y}, {X: b.x, Y: b.y}})
		if err != nil {
			return fmt.Errorf("render component %s: %w", comp.Name, err)
		}
		p.Add(line)
		labels.XYs = append(labels.XYs, plotter.XY{X: (a.x + b.x) / 2, Y: (a.y+b.y)/2 + 0.2})
		labels.Labels = append(labels.Labels, comp.Name)
	}

	for node, pos := range positions {
		labels.XYs = append(labels.XYs, plotter.XY{X: pos.x, Y: pos.y - 0.3})
		if node == netlist.Ground {
			labels.Labels = append(labels.Labels, "GND")
		} else {
			labels.Labels = append(labels.Labels, node)
		}
	}
	if len(labels.XYs) > 0 {
		labelPlot, err := plotter.NewLabels(labels)
		if err != nil {
			return fmt.Errorf("render labels: %w", err)
		}
		p.Add(labelPlot)
	}

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("render schematic: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render schematic: %w", err)
	}
	return nil
}

// placeNodes assigns grid positions: ground at the origin, every other
// node at increasing x in order of first appearance.
func placeNodes(comps []datatypes.Component) map[string]point {
	positions := map[string]point{netlist.Ground: {0, 0}}
	nextX := 0.0
	for _, comp := range comps {
		for _, raw := range comp.Nodes {
			node := netlist.NormalizeNode(raw)
			if _, ok := positions[node]; ok {
				continue
			}
			positions[node] = point{nextX, 2}
			nextX += 2
		}
	}
	return positions
}
