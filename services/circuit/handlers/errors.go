// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the gin handlers for the circuit service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
)

// respondError maps the service error taxonomy onto HTTP status codes:
// not-found sentinels to 404, validation failures to 400, solver
// failures to 502, everything else to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, datatypes.ErrCircuitNotFound),
		errors.Is(err, datatypes.ErrComponentNotFound),
		errors.Is(err, datatypes.ErrVersionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case datatypes.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case datatypes.IsSimulation(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		slog.Error("unhandled request error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// circuitID parses the :id path parameter. A non-numeric id responds
// 400 and returns false.
func circuitID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "circuit id must be an integer"})
		return 0, false
	}
	return id, true
}
