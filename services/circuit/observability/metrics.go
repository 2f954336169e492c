// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the circuit
// service: simulation counters and latency, mutation counters, and a
// live-circuit gauge. Metrics are exposed on /metrics; all operations
// are thread-safe via Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "circuit"

// Metrics holds all Prometheus metrics for the circuit service.
// Initialize once at startup via NewMetrics(). A nil *Metrics is safe to
// use; every method no-ops, which keeps tests and the CLI free of a
// registry dependency.
type Metrics struct {
	// SimulationsTotal counts simulation runs.
	// Labels: analysis (operating_point, dc, ac, transient), status (ok,
	// validation_error, simulation_error).
	SimulationsTotal *prometheus.CounterVec

	// SimulationDuration measures end-to-end simulation latency,
	// including translation and solver time. Labels: analysis.
	SimulationDuration *prometheus.HistogramVec

	// MutationsTotal counts circuit mutations.
	// Labels: operation (add_component, remove_component, replace_all).
	MutationsTotal *prometheus.CounterVec

	// CircuitsLive tracks the number of circuits in the registry.
	CircuitsLive prometheus.Gauge
}

// NewMetrics registers all circuit metrics with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		SimulationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "simulations_total",
			Help:      "Simulation runs by analysis kind and outcome.",
		}, []string{"analysis", "status"}),
		SimulationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "simulation_duration_seconds",
			Help:      "End-to-end simulation latency by analysis kind.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"analysis"}),
		MutationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations_total",
			Help:      "Circuit mutations by operation.",
		}, []string{"operation"}),
		CircuitsLive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "circuits_live",
			Help:      "Circuits currently held in the registry.",
		}),
	}
}

// ObserveSimulation records one simulation run.
func (m *Metrics) ObserveSimulation(analysis, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SimulationsTotal.WithLabelValues(analysis, status).Inc()
	m.SimulationDuration.WithLabelValues(analysis).Observe(elapsed.Seconds())
}

// ObserveMutation records one circuit mutation.
func (m *Metrics) ObserveMutation(operation string) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(operation).Inc()
}

// SetCircuitsLive records the current registry size.
func (m *Metrics) SetCircuitsLive(n int) {
	if m == nil {
		return
	}
	m.CircuitsLive.Set(float64(n))
}
