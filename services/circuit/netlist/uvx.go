// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// UVX synthesis: black-box behavioral components built from primitive
// elements and solver behavioral expressions instead of transistor-level
// models.
package netlist

import (
	"fmt"
	"math"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
)

// Input impedance of the synthesized op-amp front end. Real resistors
// rather than open pins keep the inputs inside the solver's connectivity
// matrix without violating node-isolation rules.
const opAmpInputImpedance = 1e9

func translateUVX(deck *Deck, comp datatypes.Component, nodes []string) error {
	subtype := comp.Parameters.String("uvx_type", datatypes.UVXOpAmp)
	switch subtype {
	case datatypes.UVXOpAmp:
		return synthOpAmp(deck, comp, nodes)
	case datatypes.UVXComparator:
		return synthComparator(deck, comp, nodes)
	case datatypes.UVXADC:
		return synthADC(deck, comp, nodes)
	case datatypes.UVXDAC:
		return synthDAC(deck, comp, nodes)
	}
	skippedUVX(comp, subtype)
	return nil
}

// synthOpAmp expands an op-amp (nodes: out, in-, in+) into two 1 GΩ input
// resistors feeding a pair of internal nodes and one differential-gain
// dependent source from that pair to the output.
func synthOpAmp(deck *Deck, comp datatypes.Component, nodes []string) error {
	if len(nodes) < 3 {
		return datatypes.NewValidationError("opamp requires at least 3 nodes (out, in-, in+), got %d", len(nodes))
	}
	out, inNeg, inPos := nodes[0], nodes[1], nodes[2]
	internal1 := fmt.Sprintf("int_%s_1", comp.Name)
	internal2 := fmt.Sprintf("int_%s_2", comp.Name)
	gain := datatypes.OpAmpFrom(comp.Parameters).Gain

	deck.Cards = append(deck.Cards,
		Card{Kind: CardResistor, Name: fmt.Sprintf("R%s_in_p", comp.Name),
			Nodes: []string{inPos, internal1}, Value: opAmpInputImpedance},
		Card{Kind: CardResistor, Name: fmt.Sprintf("R%s_in_n", comp.Name),
			Nodes: []string{inNeg, internal2}, Value: opAmpInputImpedance},
		Card{Kind: CardVCVS, Name: "E" + comp.Name,
			Nodes: []string{out, Ground, internal1, internal2}, Value: gain},
	)
	return nil
}

// synthComparator expands a comparator (nodes: out, in-, in+) into a
// behavioral source producing High when v(in+) - v(in-) > 0, else Low.
func synthComparator(deck *Deck, comp datatypes.Component, nodes []string) error {
	if len(nodes) != 3 {
		return datatypes.NewValidationError("comparator requires exactly 3 nodes (out, in-, in+), got %d", len(nodes))
	}
	out, inNeg, inPos := nodes[0], nodes[1], nodes[2]
	p := datatypes.ComparatorFrom(comp.Parameters)

	deck.Cards = append(deck.Cards, Card{
		Kind:  CardBehavioral,
		Name:  "B" + comp.Name,
		Nodes: []string{out, Ground},
		Expr: fmt.Sprintf("if(v(%s)-v(%s)>0, %s, %s)",
			inPos, inNeg, fnum(p.High), fnum(p.Low)),
	})
	return nil
}

// synthADC expands an ADC (nodes: out, in) into a quantization
// expression: the input is scaled to 2^bits-1 levels against the
// reference, rounded, and scaled back.
func synthADC(deck *Deck, comp datatypes.Component, nodes []string) error {
	if len(nodes) != 2 {
		return datatypes.NewValidationError("adc requires exactly 2 nodes (out, in), got %d", len(nodes))
	}
	out, in := nodes[0], nodes[1]
	p := datatypes.ConverterFrom(comp.Parameters)
	levels := math.Pow(2, float64(p.Bits)) - 1

	deck.Cards = append(deck.Cards, Card{
		Kind:  CardBehavioral,
		Name:  "B" + comp.Name,
		Nodes: []string{out, Ground},
		// floor(x+0.5) because the solver's expression grammar has no round().
		Expr: fmt.Sprintf("floor(v(%s)*%s/%s+0.5)*%s/%s",
			in, fnum(levels), fnum(p.Reference), fnum(p.Reference), fnum(levels)),
	})
	return nil
}

// synthDAC expands a DAC (nodes: out, in) into v(out) = v(in) * ref.
// The digital input is assumed pre-scaled to [0, 1].
func synthDAC(deck *Deck, comp datatypes.Component, nodes []string) error {
	if len(nodes) != 2 {
		return datatypes.NewValidationError("dac requires exactly 2 nodes (out, in), got %d", len(nodes))
	}
	out, in := nodes[0], nodes[1]
	p := datatypes.ConverterFrom(comp.Parameters)

	deck.Cards = append(deck.Cards, Card{
		Kind:  CardBehavioral,
		Name:  "B" + comp.Name,
		Nodes: []string{out, Ground},
		Expr:  fmt.Sprintf("v(%s)*%s", in, fnum(p.Reference)),
	})
	return nil
}
