// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
	"github.com/AleutianAI/CircuitLocal/services/circuit/sim"
)

// Simulate handles POST /v1/circuits/:id/simulate. The analysis runs
// against the circuit's live state; versioned state is never simulated.
func Simulate(reg *registry.Registry, runner *sim.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		var req datatypes.SimulationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		circuit, err := reg.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		snap := circuit.Snapshot()
		slog.Info("simulation requested", "circuit_id", id, "analysis", req.Kind(),
			"version", snap.Version)
		result, err := runner.Run(c.Request.Context(), snap, req.Kind(), req.Params)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"analysis": result.Analysis(), "result": result})
	}
}

// Netlist handles GET /v1/circuits/:id/netlist, returning the solver
// deck for the live circuit as plain text.
func Netlist(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		circuit, err := reg.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		snap := circuit.Snapshot()
		deck, err := netlist.Translate(snap.Name, snap.Components)
		if err != nil {
			respondError(c, err)
			return
		}
		c.String(http.StatusOK, deck.Text())
	}
}
