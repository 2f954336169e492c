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
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ComponentSpec is the input form of a component, before a name has been
// assigned. Used for initial creation, bulk replacement, and restore.
type ComponentSpec struct {
	Type       string     `json:"type"`
	Nodes      []string   `json:"nodes"`
	Value      *float64   `json:"value,omitempty"`
	Parameters Parameters `json:"parameters,omitempty"`
}

// HistoryEntry is one superseded snapshot, written only on bulk
// replacement. Components is a deep copy, never aliased to live state.
type HistoryEntry struct {
	Version    int         `json:"version"`
	Components []Component `json:"components"`
}

// Snapshot is a read-only view of a circuit at a point in time.
type Snapshot struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	Components []Component `json:"components"`
}

// Circuit is the versioned aggregate of components.
//
// All exported methods take the circuit's own lock, so a Circuit is safe
// for concurrent use; each mutation runs to completion before the next
// operation on the same circuit observes anything. Version starts at 1
// and increments on every structural mutation. Renaming alone does not
// increment it.
type Circuit struct {
	mu sync.Mutex

	id         int
	name       string
	version    int
	components []Component
	history    []HistoryEntry

	// nextSeq maps a type tag to the next name sequence number. Counters
	// only ever grow, even across removals, so retired names are never
	// reissued.
	nextSeq map[ComponentType]int
}

// NewCircuit creates an empty circuit at version 1. An empty name gets
// the "Circuit {id}" display default.
func NewCircuit(id int, name string) *Circuit {
	if name == "" {
		name = fmt.Sprintf("Circuit %d", id)
	}
	return &Circuit{
		id:      id,
		name:    name,
		version: 1,
		nextSeq: make(map[ComponentType]int),
	}
}

// ID returns the registry-assigned identifier.
func (c *Circuit) ID() int { return c.id }

// Name returns the current display name.
func (c *Circuit) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Version returns the current version number.
func (c *Circuit) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Rename sets the display name. It touches neither version nor history.
func (c *Circuit) Rename(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// AddComponent validates and appends one component, assigning its
// generated name and bumping the version. On a validation failure no
// counter advances and the circuit is unchanged.
func (c *Circuit) AddComponent(rawType string, nodes []string, value *float64, params Parameters) (Component, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(rawType, nodes, value, params)
}

func (c *Circuit) addLocked(rawType string, nodes []string, value *float64, params Parameters) (Component, error) {
	typ, ok := NormalizeType(rawType)
	if !ok {
		return Component{}, NewValidationError("unknown component type %q", rawType)
	}
	if err := ValidateComponent(typ, nodes, value, params); err != nil {
		return Component{}, err
	}

	seq := c.nextSeq[typ]
	if seq == 0 {
		seq = 1
	}
	c.nextSeq[typ] = seq + 1

	comp := Component{
		Name:       fmt.Sprintf("%s%d", typ, seq),
		Type:       typ,
		Nodes:      append([]string(nil), nodes...),
		Value:      cloneFloat(value),
		Parameters: params.Clone(),
	}
	c.components = append(c.components, comp)
	c.version++
	return comp.Clone(), nil
}

// RemoveComponent removes the component with the given name and reports
// whether one was found. Removal bumps the version but never touches
// history or counters.
func (c *Circuit) RemoveComponent(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, comp := range c.components {
		if comp.Name == name {
			c.components = append(c.components[:i], c.components[i+1:]...)
			c.version++
			return true
		}
	}
	return false
}

// ReplaceAll snapshots the current state into history, then clears the
// component list and re-adds every spec in order. Names and counters are
// freshly assigned in the new list's order. Version increments once for
// the snapshot plus once per re-added component.
//
// All specs are validated before anything is committed; a failing spec
// leaves the circuit untouched.
func (c *Circuit) ReplaceAll(specs []ComponentSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, spec := range specs {
		typ, ok := NormalizeType(spec.Type)
		if !ok {
			return NewValidationError("component %d: unknown component type %q", i, spec.Type)
		}
		if err := ValidateComponent(typ, spec.Nodes, spec.Value, spec.Parameters); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}

	c.history = append(c.history, HistoryEntry{
		Version:    c.version,
		Components: cloneComponents(c.components),
	})
	c.version++
	c.components = nil

	for _, spec := range specs {
		// Cannot fail: every spec was validated above.
		if _, err := c.addLocked(spec.Type, spec.Nodes, spec.Value, spec.Parameters); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a deep-copied, side-effect-free view of the live state.
func (c *Circuit) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:         c.id,
		Name:       c.name,
		Version:    c.version,
		Components: cloneComponents(c.components),
	}
}

// VersionAt returns the component list at version v: the live list when
// v matches the current version, otherwise the matching history entry.
func (c *Circuit) VersionAt(v int) ([]Component, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == c.version {
		return cloneComponents(c.components), nil
	}
	for _, entry := range c.history {
		if entry.Version == v {
			return cloneComponents(entry.Components), nil
		}
	}
	return nil, fmt.Errorf("version %d: %w", v, ErrVersionNotFound)
}

// Versions lists every retrievable version: history entries in write
// order, then the live version.
func (c *Circuit) Versions() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, 0, len(c.history)+1)
	for _, entry := range c.history {
		out = append(out, entry.Version)
	}
	return append(out, c.version)
}

// HistoryLen returns the number of archived snapshots.
func (c *Circuit) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// RestoreCircuit rebuilds a circuit from persisted state. Components keep
// their stored names and order; per-type counters resume past the highest
// stored sequence number so restored names are not reissued. History is
// not part of persisted state and starts empty.
func RestoreCircuit(id int, name string, version int, components []Component) *Circuit {
	c := NewCircuit(id, name)
	c.components = cloneComponents(components)
	for _, comp := range components {
		if seq, ok := nameSequence(comp); ok && seq >= c.nextSeq[comp.Type] {
			c.nextSeq[comp.Type] = seq + 1
		}
	}
	if version >= 1 {
		c.version = version
	}
	return c
}

// nameSequence extracts the numeric suffix of a generated name, e.g. 12
// from "R12".
func nameSequence(comp Component) (int, bool) {
	suffix := strings.TrimPrefix(comp.Name, string(comp.Type))
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

func cloneComponents(comps []Component) []Component {
	out := make([]Component, len(comps))
	for i, comp := range comps {
		out[i] = comp.Clone()
	}
	return out
}
