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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
	"github.com/AleutianAI/CircuitLocal/services/circuit/registry"
	"github.com/AleutianAI/CircuitLocal/services/circuit/sim"
	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

// fakeSolver satisfies spice.Solver without an ngspice binary.
type fakeSolver struct {
	result *spice.RawResult
	err    error
}

func (f *fakeSolver) Run(ctx context.Context, deck *netlist.Deck, directive spice.Directive) (*spice.RawResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(solver spice.Solver) (*gin.Engine, *registry.Registry) {
	gin.SetMode(gin.TestMode)
	reg := registry.New(nil, nil)
	runner := sim.NewRunner(solver, 0, nil)

	router := gin.New()
	v1 := router.Group("/v1")
	circuits := v1.Group("/circuits")
	circuits.POST("", CreateCircuit(reg))
	circuits.GET("", ListCircuits(reg))
	circuits.GET("/:id", GetCircuit(reg))
	circuits.PUT("/:id", UpdateCircuit(reg))
	circuits.PATCH("/:id", RenameCircuit(reg))
	circuits.DELETE("/:id", DeleteCircuit(reg))
	circuits.POST("/:id/components", AddComponent(reg, nil))
	circuits.DELETE("/:id/components/:name", RemoveComponent(reg, nil))
	circuits.POST("/:id/uvx", AddUVX(reg, nil))
	circuits.POST("/:id/simulate", Simulate(reg, runner))
	circuits.GET("/:id/netlist", Netlist(reg))
	circuits.GET("/:id/versions", ListVersions(reg))
	return router, reg
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeCircuit(t *testing.T, w *httptest.ResponseRecorder) datatypes.CircuitResponse {
	t.Helper()
	var resp datatypes.CircuitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCircuitLifecycle(t *testing.T) {
	router, _ := newTestRouter(&fakeSolver{})

	// Create with initial components.
	w := doJSON(t, router, http.MethodPost, "/v1/circuits", gin.H{
		"name": "divider",
		"components": []gin.H{
			{"type": "V", "nodes": []string{"in", "gnd"}, "value": 5},
			{"type": "R", "nodes": []string{"in", "out"}, "value": 1000},
			{"type": "R", "nodes": []string{"out", "gnd"}, "value": 2200},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeCircuit(t, w)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, 4, created.Version)
	require.Len(t, created.Components, 3)
	assert.Equal(t, "V1", created.Components[0].Name)

	// List.
	w = doJSON(t, router, http.MethodGet, "/v1/circuits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []datatypes.CircuitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// Add a component.
	w = doJSON(t, router, http.MethodPost, "/v1/circuits/1/components", gin.H{
		"type": "C", "nodes": []string{"out", "gnd"}, "value": 1e-6,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	withCap := decodeCircuit(t, w)
	assert.Equal(t, 5, withCap.Version)
	assert.Equal(t, "C1", withCap.Components[3].Name)

	// Remove it.
	w = doJSON(t, router, http.MethodDelete, "/v1/circuits/1/components/C1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeCircuit(t, w).Components, 3)

	// Removing again is a 404.
	w = doJSON(t, router, http.MethodDelete, "/v1/circuits/1/components/C1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Rename via query parameter.
	w = doJSON(t, router, http.MethodPatch, "/v1/circuits/1?name=renamed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", decodeCircuit(t, w).Name)

	// Delete.
	w = doJSON(t, router, http.MethodDelete, "/v1/circuits/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, "/v1/circuits/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCircuit_InvalidComponent(t *testing.T) {
	router, _ := newTestRouter(&fakeSolver{})
	w := doJSON(t, router, http.MethodPost, "/v1/circuits", gin.H{
		"name": "bad",
		"components": []gin.H{
			{"type": "R", "nodes": []string{"only-one"}, "value": 100},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nodes")
}

func TestGetCircuit_VersionQuery(t *testing.T) {
	router, reg := newTestRouter(&fakeSolver{})
	circuit, err := reg.Create("rc", []datatypes.ComponentSpec{
		{Type: "R", Nodes: []string{"1", "0"}, Value: float64Ptr(100)},
	})
	require.NoError(t, err)
	require.NoError(t, circuit.ReplaceAll([]datatypes.ComponentSpec{
		{Type: "V", Nodes: []string{"1", "0"}, Value: float64Ptr(5)},
	}))

	// Live state.
	w := doJSON(t, router, http.MethodGet, "/v1/circuits/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	live := decodeCircuit(t, w)
	assert.Equal(t, "V1", live.Components[0].Name)

	// Archived version.
	w = doJSON(t, router, http.MethodGet, "/v1/circuits/1?version=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	archived := decodeCircuit(t, w)
	assert.Equal(t, 2, archived.Version)
	assert.Equal(t, "R1", archived.Components[0].Name)

	// Unknown version.
	w = doJSON(t, router, http.MethodGet, "/v1/circuits/1?version=99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Non-numeric version.
	w = doJSON(t, router, http.MethodGet, "/v1/circuits/1?version=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListVersions(t *testing.T) {
	router, reg := newTestRouter(&fakeSolver{})
	circuit, _ := reg.Create("rc", []datatypes.ComponentSpec{
		{Type: "R", Nodes: []string{"1", "0"}, Value: float64Ptr(100)},
	})
	circuit.ReplaceAll([]datatypes.ComponentSpec{
		{Type: "R", Nodes: []string{"1", "0"}, Value: float64Ptr(200)},
	})

	w := doJSON(t, router, http.MethodGet, "/v1/circuits/1/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var versions []int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &versions))
	assert.Equal(t, []int{2, 4}, versions)
}

func TestAddUVX_RejectsUnknownSubtype(t *testing.T) {
	router, reg := newTestRouter(&fakeSolver{})
	reg.Create("amp", nil)

	w := doJSON(t, router, http.MethodPost, "/v1/circuits/1/uvx", gin.H{
		"uvx_type": "quantum_flux", "nodes": []string{"a", "b"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/circuits/1/uvx", gin.H{
		"uvx_type": "opamp", "nodes": []string{"out", "inn", "inp"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeCircuit(t, w)
	require.Len(t, resp.Components, 1)
	assert.Equal(t, "U1", resp.Components[0].Name)
	assert.Equal(t, "opamp", resp.Components[0].Parameters["uvx_type"])
}

func TestSimulate_OperatingPoint(t *testing.T) {
	solver := &fakeSolver{result: &spice.RawResult{
		Nodes: map[string]spice.Vector{
			"out": {Real: []float64{3.4375}},
			"0":   {Real: []float64{0}},
		},
		Branches: map[string]spice.Vector{"v1": {Real: []float64{-1.5625e-3}}},
	}}
	router, reg := newTestRouter(solver)
	reg.Create("divider", []datatypes.ComponentSpec{
		{Type: "V", Nodes: []string{"in", "gnd"}, Value: float64Ptr(5)},
		{Type: "R", Nodes: []string{"in", "out"}, Value: float64Ptr(1000)},
		{Type: "R", Nodes: []string{"out", "gnd"}, Value: float64Ptr(2200)},
	})

	w := doJSON(t, router, http.MethodPost, "/v1/circuits/1/simulate", gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Analysis string `json:"analysis"`
		Result   struct {
			Nodes    map[string]float64 `json:"nodes"`
			Branches map[string]float64 `json:"branches"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "operating_point", resp.Analysis, "empty analysis defaults to operating_point")
	assert.Equal(t, 3.4375, resp.Result.Nodes["out"])
	_, hasGround := resp.Result.Nodes["0"]
	assert.False(t, hasGround)
}

func TestSimulate_ErrorMapping(t *testing.T) {
	t.Run("missing dc params is 400", func(t *testing.T) {
		router, reg := newTestRouter(&fakeSolver{})
		reg.Create("c", []datatypes.ComponentSpec{
			{Type: "R", Nodes: []string{"1", "0"}, Value: float64Ptr(1)},
		})
		w := doJSON(t, router, http.MethodPost, "/v1/circuits/1/simulate", gin.H{
			"analysis": "dc",
			"params":   gin.H{"source": "V1", "start": 0, "stop": 5},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "step")
	})

	t.Run("solver failure is 502", func(t *testing.T) {
		router, reg := newTestRouter(&fakeSolver{
			err: datatypes.NewSimulationError("no output produced, likely convergence failure", nil),
		})
		reg.Create("c", []datatypes.ComponentSpec{
			{Type: "R", Nodes: []string{"1", "0"}, Value: float64Ptr(1)},
		})
		w := doJSON(t, router, http.MethodPost, "/v1/circuits/1/simulate", gin.H{})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "convergence")
	})

	t.Run("unknown circuit is 404", func(t *testing.T) {
		router, _ := newTestRouter(&fakeSolver{})
		w := doJSON(t, router, http.MethodPost, "/v1/circuits/9/simulate", gin.H{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNetlist_Text(t *testing.T) {
	router, reg := newTestRouter(&fakeSolver{})
	reg.Create("divider", []datatypes.ComponentSpec{
		{Type: "V", Nodes: []string{"in", "gnd"}, Value: float64Ptr(5)},
		{Type: "R", Nodes: []string{"in", "out"}, Value: float64Ptr(1000)},
	})

	w := doJSON(t, router, http.MethodGet, "/v1/circuits/1/netlist", nil)
	require.Equal(t, http.StatusOK, w.Code)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "* divider", lines[0])
	assert.Equal(t, "V1 in 0 DC 5", lines[1])
	assert.Equal(t, ".end", lines[len(lines)-1])
}

func TestCircuitID_NonNumeric(t *testing.T) {
	router, _ := newTestRouter(&fakeSolver{})
	w := doJSON(t, router, http.MethodGet, "/v1/circuits/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func float64Ptr(v float64) *float64 { return &v }
