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
	"encoding/json"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/gen-d/internal/errors"
	"github.com/kraklabs/gen-d/internal/ui"
	"github.com/kraklabs/gen-d/pkg/snapshot"
)

// HistoryEntry is the JSON-serializable shape of one scan log record.
type HistoryEntry struct {
	ScanID          string    `json:"scan_id"`
	Timestamp       time.Time `json:"timestamp"`
	RootDirectory   string    `json:"root_directory"`
	FilesCount      int       `json:"files_count"`
	CallablesCount  int       `json:"callables_count"`
	ParseErrorCount int       `json:"parse_error_count"`
}

// runHistory executes 'gend history': list the most recent recorded
// scans, most-recent first.
func runHistory(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.IntP("limit", "n", 10, "Maximum number of scans to show (0 for all)")
	dbOverride := fs.String("db", "", "Override the snapshot database path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gend history [path] [options]

List the most recently recorded scans, most-recent first.

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

	store, err := snapshot.Open(dbPath)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot open snapshot database",
			fmt.Sprintf("Failed to open %s", dbPath),
			"Run 'gend scan' at least once before using 'gend history'",
			err,
		), globals.JSON)
	}
	defer func() { _ = store.Close() }()

	records, err := store.ScanHistory(*limit)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot read scan history",
			"Failed to read the scans table",
			"The database file may be corrupt; consider re-running 'gend scan'",
			err,
		), globals.JSON)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, HistoryEntry{
			ScanID:          r.ScanID,
			Timestamp:       r.Timestamp,
			RootDirectory:   r.RootDirectory,
			FilesCount:      r.FilesCount,
			CallablesCount:  r.CallablesCount,
			ParseErrorCount: r.ParseErrorCount,
		})
	}

	if globals.JSON {
		encoded, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			errors.FatalError(errors.NewInternalError(
				"Cannot encode history result",
				"JSON marshaling failed unexpectedly",
				"This is a bug. Please report it with your history output",
				err,
			), true)
		}
		fmt.Println(string(encoded))
		return
	}

	if len(entries) == 0 {
		ui.Warning("no scans recorded yet; run 'gend scan' first")
		return
	}

	ui.Header("Scan History")
	for _, e := range entries {
		fmt.Printf("%s  %s  files=%d  callables=%d  errors=%d\n",
			ui.Label(e.ScanID),
			e.Timestamp.Format(time.RFC3339),
			e.FilesCount,
			e.CallablesCount,
			e.ParseErrorCount,
		)
	}
}
