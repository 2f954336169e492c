// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
)

// PersistedCircuit is the durable form of one circuit. History is not
// persisted: restarts lose historical versions, matching the reference
// behavior.
type PersistedCircuit struct {
	ID         int                   `json:"id"`
	Name       string                `json:"name"`
	Version    int                   `json:"version"`
	Components []datatypes.Component `json:"components"`
}

// State is the complete durable registry state.
type State struct {
	NextID   int                      `json:"next_id"`
	Circuits map[int]PersistedCircuit `json:"circuits"`
}

// Store is the persistence boundary. Save replaces the whole durable
// state; Load reconstructs it. A Load on a never-written store returns
// an empty State and no error.
type Store interface {
	Save(state State) error
	Load() (State, error)
}

// FileStore persists state as one JSON document. Writes go through a
// temp file and rename so a crash mid-write never corrupts the previous
// snapshot.
type FileStore struct {
	Path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save implements Store.
func (s *FileStore) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0750); err != nil {
		return fmt.Errorf("save circuit state: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("save circuit state: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("save circuit state: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("save circuit state: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load() (State, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return emptyState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load circuit state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("load circuit state: %w", err)
	}
	if state.Circuits == nil {
		state.Circuits = make(map[int]PersistedCircuit)
	}
	return state, nil
}

func emptyState() State {
	return State{NextID: 1, Circuits: make(map[int]PersistedCircuit)}
}
