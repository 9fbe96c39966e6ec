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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/gen-d/internal/errors"
	"github.com/kraklabs/gen-d/internal/ui"
	"github.com/kraklabs/gen-d/pkg/scan"
	"github.com/kraklabs/gen-d/pkg/snapshot"
)

const statusStaleTruncateAt = 5

// StatusResult is the JSON-serializable summary of a fresh scan's drift
// state: a re-scan diffed against the store, not a read of stale history.
type StatusResult struct {
	ProjectRoot    string    `json:"project_root"`
	DatabasePath   string    `json:"database_path"`
	ScanAt         time.Time `json:"scan_at,omitempty"`
	FilesScanned   int       `json:"files_scanned"`
	CallablesTotal int       `json:"callables_total"`
	Fresh          int       `json:"fresh"`
	Stale          int       `json:"stale"`
	Undocumented   int       `json:"undocumented"`
	StaleIDs       []string  `json:"stale_ids,omitempty"`
	StaleTruncated bool      `json:"stale_truncated"`
	Error          string    `json:"error,omitempty"`
}

// runStatus executes 'gend status [path]': re-scan the project, diff the
// result against the snapshot store, and print the drift counts plus the
// stale list (truncated at 5 unless --all is given).
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	all := fs.Bool("all", false, "Show the full stale list instead of truncating at 5")
	dbOverride := fs.String("db", "", "Override the snapshot database path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gend status [path] [options]

Re-scan the project and report its documentation drift state: fresh,
stale, and undocumented counts, against the last recorded snapshot.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	root, err := projectRoot(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if fs.NArg() > 0 {
		root, err = absPath(fs.Arg(0))
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
	}

	dbPath := databasePath(root)
	if *dbOverride != "" {
		dbPath = *dbOverride
	}

	result := StatusResult{ProjectRoot: root, DatabasePath: dbPath}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = DefaultConfig(defaultProjectID(root))
	}

	if err := os.MkdirAll(ConfigDir(root), 0750); err != nil {
		result.Error = fmt.Sprintf("cannot create .gen-d directory: %v", err)
		printStatusResult(result, globals)
		return
	}

	store, err := snapshot.Open(dbPath)
	if err != nil {
		result.Error = fmt.Sprintf("cannot open database: %v", err)
		printStatusResult(result, globals)
		return
	}
	defer func() { _ = store.Close() }()

	orch := scan.New(store, cfg.ToScanConfig(), newLogger(globals))
	orch.DryRun = true
	scanResult, err := orch.Run(context.Background(), root)
	if err != nil {
		result.Error = fmt.Sprintf("scan failed: %v", err)
		printStatusResult(result, globals)
		return
	}

	result.ScanAt = time.Now().UTC()
	result.FilesScanned = scanResult.FilesScanned
	result.CallablesTotal = scanResult.Report.Total()
	result.Fresh = scanResult.Report.FreshCount
	result.Stale = scanResult.Report.StaleCount
	result.Undocumented = scanResult.Report.UndocumentedCount
	result.StaleIDs = scanResult.Report.StaleIDs
	if !*all && len(result.StaleIDs) > statusStaleTruncateAt {
		result.StaleIDs = result.StaleIDs[:statusStaleTruncateAt]
		result.StaleTruncated = true
	}

	printStatusResult(result, globals)
}

func printStatusResult(result StatusResult, globals GlobalFlags) {
	if globals.JSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			errors.FatalError(errors.NewInternalError(
				"Cannot encode status result",
				"JSON marshaling failed unexpectedly",
				"This is a bug. Please report it with your status output",
				err,
			), true)
		}
		fmt.Println(string(encoded))
		return
	}

	ui.Header("gen-d Status")
	fmt.Printf("%s %s\n", ui.Label("Project Root:"), result.ProjectRoot)
	fmt.Printf("%s  %s\n", ui.Label("Database:"), ui.DimText(result.DatabasePath))

	if result.Error != "" {
		fmt.Println()
		ui.Warning(result.Error)
		return
	}

	fmt.Printf("%s    %s\n", ui.Label("Scanned At:"), result.ScanAt.Format(time.RFC3339))
	fmt.Printf("Files Scanned: %s\n", ui.CountText(result.FilesScanned))
	fmt.Printf("Callables:     %s\n", ui.CountText(result.CallablesTotal))
	_, _ = ui.Green.Printf("  fresh:        %d\n", result.Fresh)
	if result.Stale > 0 {
		_, _ = ui.Yellow.Printf("  stale:        %d\n", result.Stale)
	} else {
		fmt.Printf("  stale:        %d\n", result.Stale)
	}
	if result.Undocumented > 0 {
		_, _ = ui.Red.Printf("  undocumented: %d\n", result.Undocumented)
	} else {
		fmt.Printf("  undocumented: %d\n", result.Undocumented)
	}

	if len(result.StaleIDs) > 0 {
		fmt.Println()
		ui.SubHeader("Stale callables:")
		for _, id := range result.StaleIDs {
			fmt.Printf("  %s\n", id)
		}
		if result.StaleTruncated {
			fmt.Printf("  ... use --all to show the remaining %d\n", result.Stale-len(result.StaleIDs))
		}
	}
}
