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
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/CircuitLocal/services/circuit/config"
	"github.com/AleutianAI/CircuitLocal/services/circuit/middleware"
	"github.com/AleutianAI/CircuitLocal/services/circuit/observability"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
	"github.com/AleutianAI/CircuitLocal/services/circuit/routes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/sim"
	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("circuit-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// openStore builds the persistence backend named by the configuration.
// The badger backend hands back a closer so the database can flush its
// value log on shutdown.
func openStore(cfg config.Config) (registry.Store, func(), error) {
	switch cfg.StoreBackend {
	case "file":
		return registry.NewFileStore(cfg.StorePath), func() {}, nil
	case "badger":
		store, err := registry.OpenBadgerStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("failed to close circuit database", "error", err)
			}
		}, nil
	default: // "none", validated at load
		return nil, func() {}, nil
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	// Tracing is opt-in: without an OTLP endpoint the service runs in
	// lightweight mode with no collector dependency.
	if cfg.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	} else {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set. Running without trace export.")
	}

	metrics := observability.NewMetrics()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: could not open circuit store: %v", err)
	}
	defer closeStore()

	reg := registry.New(store, metrics)
	solver := &spice.NgSpice{Binary: cfg.SolverBinary}
	runner := sim.NewRunner(solver, cfg.SimulationTimeout, metrics)

	router := gin.Default()
	router.Use(middleware.RequestID())
	if cfg.OTLPEndpoint != "" {
		router.Use(otelgin.Middleware("circuit-service"))
	}

	routes.SetupRoutes(router, reg, runner, metrics)

	slog.Info("starting the circuit server", "port", cfg.Port,
		"store_backend", cfg.StoreBackend, "solver", cfg.SolverBinary)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
