// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command circuitctl works with circuit definition files from the
// command line, without a running circuit service. It translates
// definitions to solver netlists and runs analyses through a local
// ngspice binary.
//
// # Usage
//
//	# Print the solver netlist for a circuit definition
//	circuitctl netlist rc_filter.yaml
//
//	# Run an operating point analysis
//	circuitctl simulate rc_filter.yaml
//
//	# Run a DC sweep
//	circuitctl simulate rc_filter.yaml --analysis dc \
//	    --param source=V1 --param start=0 --param stop=5 --param step=0.1
package main

import (
	"log"

	"github.com/AleutianAI/CircuitLocal/pkg/logging"
)

var logger *logging.Logger

func main() {
	logger = logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "circuitctl",
	})
	defer logger.Close()

	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
