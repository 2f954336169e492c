// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads circuit service configuration. Values come from
// an optional YAML file (CIRCUIT_CONFIG_FILE) with environment
// variables taking precedence, matching how the other services in this
// repo are configured in container compose files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the circuit service needs at startup.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`
	// StoreBackend selects persistence: "file", "badger", or "none".
	StoreBackend string `yaml:"store_backend"`
	// StorePath is the JSON state file (file backend) or database
	// directory (badger backend).
	StorePath string `yaml:"store_path"`
	// SolverBinary is the ngspice executable to invoke.
	SolverBinary string `yaml:"solver_binary"`
	// SimulationTimeout bounds a single solver run.
	SimulationTimeout time.Duration `yaml:"simulation_timeout"`
	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:              "12230",
		StoreBackend:      "file",
		StorePath:         "circuit_state.json",
		SolverBinary:      "ngspice",
		SimulationTimeout: 30 * time.Second,
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// named by CIRCUIT_CONFIG_FILE if set, then environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CIRCUIT_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CIRCUIT_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CIRCUIT_STORE_BACKEND"); v != "" {
		cfg.StoreBackend = v
	}
	if v := os.Getenv("CIRCUIT_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("CIRCUIT_SOLVER_BINARY"); v != "" {
		cfg.SolverBinary = v
	}
	if v := os.Getenv("CIRCUIT_SIMULATION_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.SimulationTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case "file", "badger", "none":
	default:
		return fmt.Errorf("invalid store backend %q: use file, badger, or none", c.StoreBackend)
	}
	if c.SimulationTimeout <= 0 {
		return fmt.Errorf("simulation timeout must be positive, got %s", c.SimulationTimeout)
	}
	return nil
}
