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
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
	"github.com/AleutianAI/CircuitLocal/services/circuit/schematic"
)

var imageContentTypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
}

// CircuitImage handles GET /v1/circuits/:id/image?format=png|svg|pdf.
func CircuitImage(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := circuitID(c)
		if !ok {
			return
		}
		format := strings.ToLower(c.DefaultQuery("format", "png"))
		circuit, err := reg.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		snap := circuit.Snapshot()

		var buf bytes.Buffer
		if err := schematic.Render(snap, format, &buf); err != nil {
			slog.Error("schematic rendering failed", "circuit_id", id, "format", format, "error", err)
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("circuit_%d_v%d.%s", id, snap.Version, format)
		c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
		c.Data(http.StatusOK, imageContentTypes[format], buf.Bytes())
	}
}
