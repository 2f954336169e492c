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
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
	"github.com/AleutianAI/CircuitLocal/services/circuit/sim"
	"github.com/AleutianAI/CircuitLocal/services/circuit/spice"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	analysisType  string
	analysisArgs  []string
	solverBinary  string
	solverTimeout int

	rootCmd = &cobra.Command{
		Use:   "circuitctl",
		Short: "A CLI for translating and simulating circuit definitions",
		Long: `circuitctl reads circuit definition files (YAML or JSON),
translates them to SPICE netlists, and runs analyses through a
local ngspice installation.`,
	}

	netlistCmd = &cobra.Command{
		Use:   "netlist [circuit file]",
		Short: "Translate a circuit definition to a SPICE netlist",
		Long: `Reads a circuit definition file, validates its components, and
prints the generated SPICE netlist to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runNetlistCommand,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate [circuit file]",
		Short: "Run a SPICE analysis on a circuit definition",
		Long: `Reads a circuit definition file, runs the requested analysis
through ngspice, and prints the normalized result as JSON.

Analysis parameters are passed as repeated --param key=value flags.
Numeric values are detected automatically.`,
		Args: cobra.ExactArgs(1),
		RunE: runSimulateCommand,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the circuitctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("circuitctl", Version)
		},
	}
)

func init() {
	simulateCmd.Flags().StringVarP(&analysisType, "analysis", "a", "operating_point",
		"analysis to run: operating_point, dc, ac, or transient")
	simulateCmd.Flags().StringArrayVarP(&analysisArgs, "param", "p", nil,
		"analysis parameter as key=value (repeatable)")
	simulateCmd.Flags().StringVar(&solverBinary, "solver", spice.DefaultBinary,
		"ngspice binary to invoke")
	simulateCmd.Flags().IntVar(&solverTimeout, "timeout", 30,
		"solver timeout in seconds")

	rootCmd.AddCommand(netlistCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func runNetlistCommand(cmd *cobra.Command, args []string) error {
	circuit, err := loadCircuitFile(args[0])
	if err != nil {
		return err
	}
	snap := circuit.Snapshot()
	deck, err := netlist.Translate(snap.Name, snap.Components)
	if err != nil {
		return fmt.Errorf("translating circuit: %w", err)
	}
	fmt.Print(deck.Text())
	return nil
}

func runSimulateCommand(cmd *cobra.Command, args []string) error {
	circuit, err := loadCircuitFile(args[0])
	if err != nil {
		return err
	}
	params, err := parseAnalysisParams(analysisArgs)
	if err != nil {
		return err
	}

	solver := &spice.NgSpice{Binary: solverBinary}
	runner := sim.NewRunner(solver, time.Duration(solverTimeout)*time.Second, nil)

	snap := circuit.Snapshot()
	logger.Info("running analysis", "analysis", analysisType,
		"circuit", snap.Name, "components", len(snap.Components))

	result, err := runner.Run(cmd.Context(), snap, analysisKind(analysisType), params)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// parseAnalysisParams turns repeated key=value flags into the parameter
// map the dispatcher expects. Values that parse as numbers are passed
// as float64; everything else stays a string.
func parseAnalysisParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		if num, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = num
		} else {
			params[key] = value
		}
	}
	return params, nil
}
