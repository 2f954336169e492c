// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package netlist translates an abstract component list into solver-ready
// primitive instructions.
//
// Translation walks the component list in insertion order and emits one
// or more cards per component, plus auxiliary .model declarations (one
// per distinct model name per pass). UVX components expand into composite
// behavioral submodels; see uvx.go. Any failure aborts the whole pass
// naming the offending component, so a partial deck is never handed to
// the solver.
package netlist

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
)

// Ground is the solver's canonical ground reference.
const Ground = "0"

// NormalizeNode maps the ground aliases to the canonical reference and
// passes every other identifier through as an opaque string.
func NormalizeNode(node string) string {
	switch strings.ToLower(node) {
	case "0", "gnd", "ground":
		return Ground
	}
	return node
}

// IsGroundName reports whether a node identifier aliases ground.
func IsGroundName(node string) bool { return NormalizeNode(node) == Ground }

// CardKind classifies a solver primitive instruction.
type CardKind int

const (
	CardResistor CardKind = iota
	CardCapacitor
	CardInductor
	CardVoltageSource
	CardCurrentSource
	CardDiode
	CardBJT
	CardVCVS
	CardBehavioral
)

// Card is one primitive instruction for the solver. Name carries the
// SPICE element class in its first letter.
type Card struct {
	Kind  CardKind
	Name  string
	Nodes []string

	Value    float64 // magnitude for passives, DC level, or VCVS gain
	Waveform string  // non-empty for SIN/PULSE sources
	Model    string  // model reference for D/Q instances
	Expr     string  // behavioral expression for B-sources
}

// Line renders the card as one netlist line.
func (c Card) Line() string {
	nodes := strings.Join(c.Nodes, " ")
	switch c.Kind {
	case CardResistor, CardCapacitor, CardInductor, CardVCVS:
		return fmt.Sprintf("%s %s %s", c.Name, nodes, fnum(c.Value))
	case CardVoltageSource, CardCurrentSource:
		if c.Waveform != "" {
			return fmt.Sprintf("%s %s %s", c.Name, nodes, c.Waveform)
		}
		return fmt.Sprintf("%s %s DC %s", c.Name, nodes, fnum(c.Value))
	case CardDiode, CardBJT:
		return fmt.Sprintf("%s %s %s", c.Name, nodes, c.Model)
	case CardBehavioral:
		return fmt.Sprintf("%s %s V=%s", c.Name, nodes, c.Expr)
	}
	return ""
}

// ModelDecl is one .model declaration, emitted once per distinct name.
type ModelDecl struct {
	Name   string
	Class  string // "D" or "NPN"
	Params []ModelParam
}

// ModelParam is one ordered key=value pair of a model card.
type ModelParam struct {
	Key   string
	Value float64
}

// Line renders the declaration as a .model netlist line.
func (m ModelDecl) Line() string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		parts[i] = fmt.Sprintf("%s=%s", p.Key, fnum(p.Value))
	}
	return fmt.Sprintf(".model %s %s(%s)", m.Name, m.Class, strings.Join(parts, " "))
}

// Deck is the complete translation output for one solver invocation.
type Deck struct {
	Title  string
	Models []ModelDecl
	Cards  []Card

	seen map[string]bool
}

// Lines returns the netlist body: title comment, model declarations,
// then cards in emission order. The analysis directive and .end are
// appended by the solver client.
func (d *Deck) Lines() []string {
	out := make([]string, 0, len(d.Models)+len(d.Cards)+1)
	title := d.Title
	if title == "" {
		title = "circuit"
	}
	out = append(out, "* "+title)
	for _, m := range d.Models {
		out = append(out, m.Line())
	}
	for _, c := range d.Cards {
		out = append(out, c.Line())
	}
	return out
}

// Text returns a standalone netlist ending in .end, suitable for export.
func (d *Deck) Text() string {
	return strings.Join(append(d.Lines(), ".end"), "\n") + "\n"
}

func (d *Deck) addModel(m ModelDecl) {
	if d.seen[m.Name] {
		return
	}
	d.seen[m.Name] = true
	d.Models = append(d.Models, m)
}

// Translate converts a component list into a deck. Components translate
// in list order; the first failure aborts the pass.
func Translate(title string, comps []datatypes.Component) (*Deck, error) {
	deck := &Deck{Title: title, seen: make(map[string]bool)}
	for _, comp := range comps {
		if err := translateComponent(deck, comp); err != nil {
			return nil, fmt.Errorf("component %s: %w", comp.Name, err)
		}
	}
	return deck, nil
}

func translateComponent(deck *Deck, comp datatypes.Component) error {
	nodes := make([]string, len(comp.Nodes))
	for i, n := range comp.Nodes {
		nodes[i] = NormalizeNode(n)
	}

	switch comp.Type {
	case datatypes.TypeResistor:
		deck.Cards = append(deck.Cards, Card{Kind: CardResistor, Name: comp.Name, Nodes: nodes, Value: magnitude(comp)})
	case datatypes.TypeCapacitor:
		deck.Cards = append(deck.Cards, Card{Kind: CardCapacitor, Name: comp.Name, Nodes: nodes, Value: magnitude(comp)})
	case datatypes.TypeInductor:
		deck.Cards = append(deck.Cards, Card{Kind: CardInductor, Name: comp.Name, Nodes: nodes, Value: magnitude(comp)})
	case datatypes.TypeVoltageSource:
		deck.Cards = append(deck.Cards, voltageSourceCard(comp, nodes))
	case datatypes.TypeCurrentSource:
		deck.Cards = append(deck.Cards, Card{Kind: CardCurrentSource, Name: comp.Name, Nodes: nodes, Value: magnitude(comp)})
	case datatypes.TypeDiode:
		m := datatypes.DiodeModelFrom(comp.Parameters)
		deck.addModel(ModelDecl{Name: m.Model, Class: "D", Params: []ModelParam{
			{Key: "IS", Value: m.IS}, {Key: "N", Value: m.N}, {Key: "VJ", Value: m.VJ},
		}})
		deck.Cards = append(deck.Cards, Card{Kind: CardDiode, Name: comp.Name, Nodes: nodes, Model: m.Model})
	case datatypes.TypeBJT:
		m := datatypes.BJTModelFrom(comp.Parameters)
		deck.addModel(ModelDecl{Name: m.Model, Class: "NPN", Params: []ModelParam{
			{Key: "BF", Value: m.BF},
		}})
		// Node order is collector, base, emitter.
		deck.Cards = append(deck.Cards, Card{Kind: CardBJT, Name: comp.Name, Nodes: nodes, Model: m.Model})
	case datatypes.TypeUVX:
		return translateUVX(deck, comp, nodes)
	default:
		return datatypes.NewValidationError(
			"type %s cannot be translated to solver primitives", comp.Type)
	}
	return nil
}

func voltageSourceCard(comp datatypes.Component, nodes []string) Card {
	card := Card{Kind: CardVoltageSource, Name: comp.Name, Nodes: nodes}
	switch comp.Parameters.String("type", "") {
	case datatypes.SourceSine:
		p := datatypes.SineFrom(comp.Parameters, comp.Value)
		card.Waveform = fmt.Sprintf("SIN(%s %s %s)", fnum(p.Offset), fnum(p.Amplitude), fnum(p.Frequency))
	case datatypes.SourcePulse:
		p := datatypes.PulseFrom(comp.Parameters, comp.Value)
		card.Waveform = fmt.Sprintf("PULSE(%s %s %s %s %s %s %s)",
			fnum(p.Initial), fnum(p.Pulsed), fnum(p.Delay),
			fnum(p.RiseTime), fnum(p.FallTime), fnum(p.PulseWidth), fnum(p.Period))
	default:
		card.Value = magnitude(comp)
	}
	return card
}

func magnitude(comp datatypes.Component) float64 {
	if comp.Value == nil {
		return 0
	}
	return *comp.Value
}

// skippedUVX is the observability hook for the unrecognized-subtype
// no-op path; reachable only via bulk replace or restored state, since
// the UVX endpoint rejects unknown subtypes at validation.
func skippedUVX(comp datatypes.Component, subtype string) {
	slog.Warn("skipping UVX component with unrecognized subtype",
		"component", comp.Name, "uvx_type", subtype)
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
