// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry maps numeric circuit identifiers to live Circuit
// instances and assigns identifiers.
//
// The registry is an explicit store object created at service start and
// injected into request handlers; there is no ambient global state. It
// is the serialization point for circuit operations: the registry map is
// guarded by its own mutex, and each Circuit carries its own lock across
// every read-modify-write span.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/observability"
)

// Registry owns the live circuit set. Identifiers start at 1 and are
// never reused, even after deletion.
type Registry struct {
	mu       sync.Mutex
	circuits map[int]*datatypes.Circuit
	nextID   int

	store   Store
	metrics *observability.Metrics
}

// New creates a registry, loading persisted state from store when one is
// configured. A load failure logs a warning and starts empty rather than
// refusing to start. Both store and metrics may be nil.
func New(store Store, metrics *observability.Metrics) *Registry {
	r := &Registry{
		circuits: make(map[int]*datatypes.Circuit),
		nextID:   1,
		store:    store,
		metrics:  metrics,
	}
	if store == nil {
		return r
	}
	state, err := store.Load()
	if err != nil {
		slog.Warn("failed to load circuit state, starting empty", "error", err)
		return r
	}
	if state.NextID > 0 {
		r.nextID = state.NextID
	}
	for id, pc := range state.Circuits {
		r.circuits[id] = datatypes.RestoreCircuit(pc.ID, pc.Name, pc.Version, pc.Components)
		if id >= r.nextID {
			r.nextID = id + 1
		}
	}
	metrics.SetCircuitsLive(len(r.circuits))
	slog.Info("circuit state loaded", "circuits", len(r.circuits), "next_id", r.nextID)
	return r
}

// Create builds a new circuit with an assigned id and optional initial
// components. A failing component leaves the registry unchanged and
// burns no identifier.
func (r *Registry) Create(name string, components []datatypes.ComponentSpec) (*datatypes.Circuit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	circuit := datatypes.NewCircuit(r.nextID, name)
	for i, spec := range components {
		if _, err := circuit.AddComponent(spec.Type, spec.Nodes, spec.Value, spec.Parameters); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
	}

	r.circuits[r.nextID] = circuit
	r.nextID++
	r.metrics.SetCircuitsLive(len(r.circuits))
	r.persistLocked()
	return circuit, nil
}

// Get returns the circuit for id, or ErrCircuitNotFound.
func (r *Registry) Get(id int) (*datatypes.Circuit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	circuit, ok := r.circuits[id]
	if !ok {
		return nil, fmt.Errorf("circuit %d: %w", id, datatypes.ErrCircuitNotFound)
	}
	return circuit, nil
}

// Update applies an optional rename and an optional bulk component
// replacement to an existing circuit.
func (r *Registry) Update(id int, name *string, components []datatypes.ComponentSpec) (*datatypes.Circuit, error) {
	circuit, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if name != nil && *name != "" {
		circuit.Rename(*name)
	}
	if components != nil {
		if err := circuit.ReplaceAll(components); err != nil {
			return nil, err
		}
		r.metrics.ObserveMutation("replace_all")
	}
	r.Persist()
	return circuit, nil
}

// Delete removes a circuit immediately; its history is discarded rather
// than archived.
func (r *Registry) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.circuits[id]; !ok {
		return fmt.Errorf("circuit %d: %w", id, datatypes.ErrCircuitNotFound)
	}
	delete(r.circuits, id)
	r.metrics.SetCircuitsLive(len(r.circuits))
	r.persistLocked()
	return nil
}

// List returns every live circuit ordered by id.
func (r *Registry) List() []*datatypes.Circuit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*datatypes.Circuit, 0, len(r.circuits))
	for _, circuit := range r.circuits {
		out = append(out, circuit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Persist writes the current state through the configured store.
// Persistence failures are logged, not propagated: the live state stays
// authoritative and the next successful save catches up.
func (r *Registry) Persist() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistLocked()
}

func (r *Registry) persistLocked() {
	if r.store == nil {
		return
	}
	if err := r.store.Save(r.stateLocked()); err != nil {
		slog.Warn("failed to persist circuit state", "error", err)
	}
}

func (r *Registry) stateLocked() State {
	state := State{
		NextID:   r.nextID,
		Circuits: make(map[int]PersistedCircuit, len(r.circuits)),
	}
	for id, circuit := range r.circuits {
		snap := circuit.Snapshot()
		state.Circuits[id] = PersistedCircuit{
			ID:         snap.ID,
			Name:       snap.Name,
			Version:    snap.Version,
			Components: snap.Components,
		}
	}
	return state
}
