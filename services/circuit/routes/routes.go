// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/CircuitLocal/services/circuit/handlers"
	"github.com/AleutianAI/CircuitLocal/services/circuit/observability"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
	"github.com/AleutianAI/CircuitLocal/services/circuit/sim"
)

func SetupRoutes(router *gin.Engine, reg *registry.Registry, runner *sim.Runner,
	metrics *observability.Metrics) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		circuits := v1.Group("/circuits")
		{
			circuits.POST("", handlers.CreateCircuit(reg))
			circuits.GET("", handlers.ListCircuits(reg))
			circuits.GET("/:id", handlers.GetCircuit(reg))
			circuits.PUT("/:id", handlers.UpdateCircuit(reg))
			circuits.PATCH("/:id", handlers.RenameCircuit(reg))
			circuits.DELETE("/:id", handlers.DeleteCircuit(reg))

			circuits.POST("/:id/components", handlers.AddComponent(reg, metrics))
			circuits.DELETE("/:id/components/:name", handlers.RemoveComponent(reg, metrics))
			circuits.POST("/:id/uvx", handlers.AddUVX(reg, metrics))

			circuits.POST("/:id/simulate", handlers.Simulate(reg, runner))
			circuits.GET("/:id/netlist", handlers.Netlist(reg))
			circuits.GET("/:id/versions", handlers.ListVersions(reg))
			circuits.GET("/:id/image", handlers.CircuitImage(reg))
		}
	}
}
