// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/CircuitLocal/services/circuit/config"
	"github.com/AleutianAI/CircuitLocal/services/circuit/middleware"
	"github.com/AleutianAI/CircuitLocal/services/circuit/observability"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
	"github.com/AleutianAI/CircuitLocal/services/circuit/routes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/sim"
	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

var (
	servePort      string
	serveStatePath string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the circuit HTTP service locally",
		Long: `Starts the circuit service with the same configuration rules as
the deployed binary (CIRCUIT_* environment variables, optional
CIRCUIT_CONFIG_FILE). Flags override both for quick local runs.

Unlike the deployed service, serve never exports traces; it is
meant for development against a local ngspice installation.`,
		RunE: runServeCommand,
	}
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveStatePath, "state", "", "state file or database path (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveStatePath != "" {
		cfg.StorePath = serveStatePath
	}

	var store registry.Store
	var closeStore func() error
	switch cfg.StoreBackend {
	case "file":
		store = registry.NewFileStore(cfg.StorePath)
	case "badger":
		db, err := registry.OpenBadgerStore(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("opening circuit store: %w", err)
		}
		store = db
		closeStore = db.Close
	}
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				logger.Error("failed to close circuit store", "error", err)
			}
		}()
	}

	metrics := observability.NewMetrics()
	reg := registry.New(store, metrics)
	runner := sim.NewRunner(&spice.NgSpice{Binary: cfg.SolverBinary}, cfg.SimulationTimeout, metrics)

	router := gin.Default()
	router.Use(middleware.RequestID())
	routes.SetupRoutes(router, reg, runner, metrics)

	logger.Info("starting the circuit server", "port", cfg.Port,
		"store_backend", cfg.StoreBackend, "solver", cfg.SolverBinary)
	return router.Run(":" + cfg.Port)
}
