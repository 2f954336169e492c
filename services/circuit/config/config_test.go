// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != "12230" {
		t.Errorf("Port = %q, want 12230", cfg.Port)
	}
	if cfg.StoreBackend != "file" {
		t.Errorf("StoreBackend = %q, want file", cfg.StoreBackend)
	}
	if cfg.SimulationTimeout != 30*time.Second {
		t.Errorf("SimulationTimeout = %s, want 30s", cfg.SimulationTimeout)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"9000\"\nstore_backend: badger\nstore_path: /tmp/circuits\nsolver_binary: /usr/local/bin/ngspice\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CIRCUIT_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.StoreBackend != "badger" {
		t.Errorf("StoreBackend = %q, want badger", cfg.StoreBackend)
	}
	if cfg.SolverBinary != "/usr/local/bin/ngspice" {
		t.Errorf("SolverBinary = %q", cfg.SolverBinary)
	}
	// Unset keys keep defaults.
	if cfg.SimulationTimeout != 30*time.Second {
		t.Errorf("SimulationTimeout = %s, want default 30s", cfg.SimulationTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"9000\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CIRCUIT_CONFIG_FILE", path)
	t.Setenv("CIRCUIT_PORT", "9001")
	t.Setenv("CIRCUIT_SIMULATION_TIMEOUT_SECONDS", "5")
	t.Setenv("CIRCUIT_STORE_BACKEND", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9001" {
		t.Errorf("Port = %q, want env override 9001", cfg.Port)
	}
	if cfg.SimulationTimeout != 5*time.Second {
		t.Errorf("SimulationTimeout = %s, want 5s", cfg.SimulationTimeout)
	}
	if cfg.StoreBackend != "none" {
		t.Errorf("StoreBackend = %q, want none", cfg.StoreBackend)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("CIRCUIT_CONFIG_FILE", "")
	t.Setenv("CIRCUIT_STORE_BACKEND", "redis")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store backend")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CIRCUIT_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_BadTimeoutEnvIgnored(t *testing.T) {
	t.Setenv("CIRCUIT_CONFIG_FILE", "")
	t.Setenv("CIRCUIT_STORE_BACKEND", "")
	t.Setenv("CIRCUIT_SIMULATION_TIMEOUT_SECONDS", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SimulationTimeout != 30*time.Second {
		t.Errorf("SimulationTimeout = %s, want default 30s", cfg.SimulationTimeout)
	}
}
