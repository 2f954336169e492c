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
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const (
	nextIDKey     = "meta/next_id"
	circuitPrefix = "circuit/"
)

// BadgerStore persists registry state in an embedded BadgerDB, one key
// per circuit plus a next_id key. Suited to deployments that want
// durable low-latency local storage without a snapshot file.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if needed) a BadgerDB at dir. The
// caller owns the store and must Close it.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open circuit store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already-open database; used by tests with an
// in-memory instance.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Save implements Store. The whole state is replaced in one
// transaction: stale circuit keys are dropped so deletions survive a
// restart.
func (s *BadgerStore) Save(state State) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		// Drop circuits that no longer exist.
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(circuitPrefix)})
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			id, err := strconv.Atoi(string(key[len(circuitPrefix):]))
			if err != nil {
				stale = append(stale, key)
				continue
			}
			if _, ok := state.Circuits[id]; !ok {
				stale = append(stale, key)
			}
		}
		it.Close()
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		if err := txn.Set([]byte(nextIDKey), []byte(strconv.Itoa(state.NextID))); err != nil {
			return err
		}
		for id, pc := range state.Circuits {
			data, err := json.Marshal(pc)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(circuitPrefix+strconv.Itoa(id)), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save circuit state: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *BadgerStore) Load() (State, error) {
	state := emptyState()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(nextIDKey))
		switch err {
		case nil:
			err = item.Value(func(val []byte) error {
				n, err := strconv.Atoi(string(val))
				if err != nil {
					return err
				}
				state.NextID = n
				return nil
			})
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
			// first boot
		default:
			return err
		}

		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(circuitPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var pc PersistedCircuit
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &pc)
			})
			if err != nil {
				return err
			}
			state.Circuits[pc.ID] = pc
		}
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("load circuit state: %w", err)
	}
	return state, nil
}
