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
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/observability"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
)

// AddComponent handles POST /v1/circuits/:id/components.
func AddComponent(reg *registry.Registry, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		var req datatypes.ComponentAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, err)
			return
		}
		circuit, err := reg.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		comp, err := circuit.AddComponent(req.Type, req.Nodes, req.Value, req.Parameters)
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.ObserveMutation("add")
		reg.Persist()
		slog.Info("component added", "circuit_id", id, "component", comp.Name, "type", comp.Type)
		c.JSON(http.StatusOK, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
	}
}

// RemoveComponent handles DELETE /v1/circuits/:id/components/:name.
func RemoveComponent(reg *registry.Registry, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		name := c.Param("name")
		circuit, err := reg.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !circuit.RemoveComponent(name) {
			respondError(c, fmt.Errorf("component %s: %w", name, datatypes.ErrComponentNotFound))
			return
		}
		metrics.ObserveMutation("remove")
		reg.Persist()
		slog.Info("component removed", "circuit_id", id, "component", name)
		c.JSON(http.StatusOK, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
	}
}

// AddUVX handles POST /v1/circuits/:id/uvx. The subtype is folded into
// the component's parameter bag; expansion into primitive elements
// happens later at translation time.
func AddUVX(reg *registry.Registry, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		var req datatypes.UVXAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, err)
			return
		}
		circuit, err := reg.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		comp, err := circuit.AddComponent(string(datatypes.TypeUVX), req.Nodes, nil, req.MergedParameters())
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.ObserveMutation("add_uvx")
		reg.Persist()
		slog.Info("uvx component added", "circuit_id", id, "component", comp.Name, "uvx_type", req.UVXType)
		c.JSON(http.StatusOK, datatypes.ResponseFromSnapshot(circuit.Snapshot()))
	}
}
