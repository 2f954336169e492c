// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/CircuitLocal/services/circuit/datatypes"
	"github.com/AleutianAI/CircuitLocal/services/circuit/netlist"
)

// DefaultBinary is the ngspice executable looked up on PATH when no
// explicit path is configured.
const DefaultBinary = "ngspice"

// maxDiagnosticBytes bounds how much solver output is carried into a
// SimulationError.
const maxDiagnosticBytes = 2048

// NgSpice runs analyses by invoking ngspice in batch mode. Each Run
// writes the deck to a private temp directory, executes the binary, and
// parses the ASCII rawfile it leaves behind. The invocation is blocking
// and CPU-bound; callers bound it with a context deadline, and a
// deadline hit surfaces as a SimulationError.
type NgSpice struct {
	Binary string
}

// NewNgSpice returns a solver using the given binary, or DefaultBinary
// when empty.
func NewNgSpice(binary string) *NgSpice {
	if binary == "" {
		binary = DefaultBinary
	}
	return &NgSpice{Binary: binary}
}

// Run implements Solver.
func (n *NgSpice) Run(ctx context.Context, deck *netlist.Deck, directive Directive) (*RawResult, error) {
	line, err := directive.Line()
	if err != nil {
		return nil, datatypes.NewValidationError("%v", err)
	}

	dir, err := os.MkdirTemp("", "circuit-sim-*")
	if err != nil {
		return nil, datatypes.NewSimulationError("cannot create solver scratch directory", err)
	}
	defer os.RemoveAll(dir)

	rawPath := filepath.Join(dir, "out.raw")
	deckPath := filepath.Join(dir, "circuit.cir")
	if err := os.WriteFile(deckPath, []byte(n.input(deck, line, rawPath)), 0600); err != nil {
		return nil, datatypes.NewSimulationError("cannot write netlist", err)
	}

	cmd := exec.CommandContext(ctx, n.Binary, "-b", deckPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, datatypes.NewSimulationError("solver timed out", ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, datatypes.NewSimulationError("solver binary not available: "+n.Binary, err)
		}
		return nil, datatypes.NewSimulationError(diagnostic(output), err)
	}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		// ngspice exits zero on some convergence failures; the missing
		// rawfile is the reliable signal.
		return nil, datatypes.NewSimulationError(diagnostic(output), err)
	}

	result, err := ParseRawfile(raw)
	if err != nil {
		return nil, datatypes.NewSimulationError("cannot parse solver output", err)
	}
	slog.Debug("solver run complete",
		"analysis", string(directive.Kind), "points", len(result.Scale),
		"nodes", len(result.Nodes), "branches", len(result.Branches))
	return result, nil
}

// input assembles the batch-mode netlist: deck body, analysis dot-line,
// and a control block that forces ASCII rawfile output.
func (n *NgSpice) input(deck *netlist.Deck, directiveLine, rawPath string) string {
	var b strings.Builder
	for _, l := range deck.Lines() {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(directiveLine)
	b.WriteByte('\n')
	b.WriteString(".control\n")
	b.WriteString("set filetype=ascii\n")
	b.WriteString("run\n")
	b.WriteString("write " + rawPath + "\n")
	b.WriteString(".endc\n")
	b.WriteString(".end\n")
	return b.String()
}

// diagnostic extracts a bounded, trimmed tail of solver output for error
// messages.
func diagnostic(output []byte) string {
	s := strings.TrimSpace(string(output))
	if s == "" {
		return "solver produced no diagnostic output"
	}
	if len(s) > maxDiagnosticBytes {
		s = "..." + s[len(s)-maxDiagnosticBytes:]
	}
	return s
}
