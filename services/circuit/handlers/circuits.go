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
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
)

// CreateCircuit handles POST /v1/circuits.
func CreateCircuit(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CircuitCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		circuit, err := reg.Create(req.Name, req.Components)
		if err != nil {
			respondError(c, err)
			return
		}
		slog.Info("circuit created", "circuit_id", circuit.ID(), "name", circuit.Name(),
			"components", len(req.Components))
		c.JSON(http.StatusCreated, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
	}
}

// ListCircuits handles GET /v1/circuits.
func ListCircuits(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		circuits := reg.List()
		out := make([]datatypes.CircuitResponse, 0, len(circuits))
		for _, circuit := range circuits {
			out = append(out, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetCircuit handles GET /v1/circuits/:id. An optional ?version= query
// serves an archived version from history instead of live state.
func GetCircuit(reg *registry.Registry) gin.HandlerFunc {
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
		if raw := c.Query("version"); raw != "" {
			version, convErr := strconv.Atoi(raw)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "version must be an integer"})
				return
			}
			comps, verErr := circuit.VersionAt(version)
			if verErr != nil {
				respondError(c, verErr)
				return
			}
			snap.Version = version
			snap.Components = comps
		}
		c.JSON(http.StatusOK, datatypes.ResponseFromSnapshot(snap))
	}
}

// UpdateCircuit handles PUT /v1/circuits/:id. A non-nil component list
// replaces the whole circuit and archives the previous state.
func UpdateCircuit(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		var req datatypes.CircuitCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		var name *string
		if req.Name != "" {
			name = &req.Name
		}
		circuit, err := reg.Update(id, name, req.Components)
		if err != nil {
			respondError(c, err)
			return
		}
		slog.Info("circuit updated", "circuit_id", id, "version", circuit.Version())
		c.JSON(http.StatusOK, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
	}
}

// RenameCircuit handles PATCH /v1/circuits/:id. The new name comes from
// the ?name= query, falling back to a JSON body.
func RenameCircuit(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		name := c.Query("name")
		if name == "" {
			var req datatypes.RenameRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
				return
			}
			if err := req.Validate(); err != nil {
				respondError(c, err)
				return
			}
			name = req.Name
		}
		circuit, err := reg.Update(id, &name, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		slog.Info("circuit renamed", "circuit_id", id, "name", name)
		c.JSON(http.StatusOK, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
	}
}

// DeleteCircuit handles DELETE /v1/circuits/:id.
func DeleteCircuit(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		if err := reg.Delete(id); err != nil {
			respondError(c, err)
			return
		}
		slog.Info("circuit deleted", "circuit_id", id)
		c.JSON(http.StatusOK, gin.H{"detail": "circuit " + strconv.Itoa(id) + " deleted"})
	}
}

// ListVersions handles GET /v1/circuits/:id/versions. The returned list
// is every archived version plus the live one, ascending.
func ListVersions(reg *registry.Registry) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, circuit.Versions())
	}
}
