// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the gend CLI for detecting documentation drift
// in a codebase: functions and methods whose code changed without their
// docstring following, or whose docstring was never written at all.
//
// Usage:
//
//	gend init                    Create .gen-d/project.yaml configuration
//	gend scan [path]             Scan a project tree and record drift state
//	gend status [path]           Re-scan and report current drift counts
//	gend explain <id> [path]     Explain why a callable was classified as it was
//	gend history [path]          Show recent scan history
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/gen-d/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool // Output in JSON format (for applicable commands)
	NoColor bool // Disable color output
	Verbose int  // Verbosity level: 0=normal, 1=-v (info), 2=-vv (debug)
	Quiet   bool // Suppress non-essential output (progress, info messages)
}

// main is the entry point for the gend CLI.
//
// It parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --config: Path to .gen-d/project.yaml configuration file
//
// Commands:
//   - init: Create .gen-d/project.yaml configuration
//   - scan: Scan a project tree and record its drift state
//   - status: Re-scan and report current drift counts
//   - explain: Explain a single callable's classification
//   - history: Show recent scan history
func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .gen-d/project.yaml (default: ./.gen-d/project.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument (the command name), so
	// subcommand-specific flags like "scan --metrics-addr" or "init -y"
	// pass through to the subcommand handlers.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `gend - documentation drift detector

gend scans a codebase for functions and methods whose code changed
without their docstring following, or whose docstring was never
written at all. It fingerprints each callable's code and docs
separately, builds the call graph connecting them, and classifies
every callable as fresh, stale, or undocumented.

Usage:
  gend <command> [options]

Commands:
  init          Create .gen-d/project.yaml configuration
  scan          Scan a project tree and record its drift state
  status        Re-scan and report current drift counts
  explain       Explain a single callable's classification
  history       Show recent scan history

Global Options:
  --json            Output in JSON format (for applicable commands)
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  -c, --config      Path to .gen-d/project.yaml
  -V, --version     Show version and exit

Examples:
  gend init                          Create configuration interactively
  gend scan                          Scan the current directory
  gend scan ./service --json         Scan a subdirectory, emit JSON
  gend status                        Re-scan and report current drift counts
  gend explain pkg.module.function   Explain one callable's classification
  gend history                       Show recent scan history

For detailed command help: gend <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("gend version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(1)
	}

	// JSON mode auto-enables quiet to prevent progress bars corrupting output.
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "scan":
		runScan(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "explain":
		runExplain(cmdArgs, *configPath, globals)
	case "history":
		runHistory(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
