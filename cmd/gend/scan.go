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
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/gen-d/internal/errors"
	"github.com/kraklabs/gen-d/internal/ui"
	"github.com/kraklabs/gen-d/pkg/metrics"
	"github.com/kraklabs/gen-d/pkg/scan"
	"github.com/kraklabs/gen-d/pkg/snapshot"
)

// ScanResult is the JSON-serializable summary of one scan pass.
type ScanResult struct {
	ScanID          string    `json:"scan_id"`
	RootDir         string    `json:"root_dir"`
	FilesScanned    int       `json:"files_scanned"`
	CallablesTotal  int       `json:"callables_total"`
	Fresh           int       `json:"fresh"`
	Stale           int       `json:"stale"`
	Undocumented    int       `json:"undocumented"`
	ParseErrors     int       `json:"parse_errors"`
	DeletedFiles    []string  `json:"deleted_files,omitempty"`
	StaleIDs        []string  `json:"stale_ids,omitempty"`
	UndocumentedIDs []string  `json:"undocumented_ids,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// runScan executes 'gend scan [path]': discover, extract, classify, and
// persist the drift state of a project tree.
func runScan(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while scanning (e.g. :9400)")
	dbOverride := fs.String("db", "", "Override the snapshot database path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gend scan [path] [options]

Scan a project tree for documentation drift: extract every function and
method, fingerprint its code and docstring, and classify it against the
last recorded scan.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	target := "."
	if fs.NArg() > 0 {
		target = fs.Arg(0)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = DefaultConfig(defaultProjectID(target))
	}

	root, err := projectRoot(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if target != "." {
		root, err = absPath(target)
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
	}

	logger := newLogger(globals)

	addr := *metricsAddr
	if addr == "" && cfg.Metrics.Enabled {
		addr = cfg.Metrics.Addr
	}
	var metricsServer *metrics.Server
	if addr != "" {
		var errCh <-chan error
		metricsServer, errCh = metrics.Serve(addr)
		logger.Info("scan.metrics.listening", "addr", addr)
		go func() {
			if err := <-errCh; err != nil {
				logger.Error("scan.metrics.failed", "err", err)
			}
		}()
	}

	dbPath := databasePath(root)
	if *dbOverride != "" {
		dbPath = *dbOverride
	}
	if err := os.MkdirAll(ConfigDir(root), 0750); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot create .gen-d directory",
			fmt.Sprintf("Permission denied creating %s", ConfigDir(root)),
			"Check directory permissions or run with appropriate privileges",
			err,
		), globals.JSON)
	}

	store, err := snapshot.Open(dbPath)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot open snapshot database",
			fmt.Sprintf("Failed to open %s", dbPath),
			"Check disk space and file permissions, or delete the database to start fresh",
			err,
		), globals.JSON)
	}
	defer func() { _ = store.Close() }()

	orch := scan.New(store, cfg.ToScanConfig(), logger)

	progressCfg := NewProgressConfig(globals)
	var bar *progressBarHandle
	orch.Progress = func(current, total int) {
		if bar == nil {
			bar = newProgressBarHandle(progressCfg, total, "Scanning files")
		}
		bar.set(current)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	start := time.Now()
	result, err := orch.Run(ctx, root)
	duration := time.Since(start)
	if bar != nil {
		bar.finish()
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Scan failed",
			"An error occurred while scanning the project",
			"Check the error details above and try again",
			err,
		), globals.JSON)
	}

	metrics.ScansTotal.Inc()
	metrics.FilesScannedTotal.Add(float64(result.FilesScanned))
	metrics.ParseErrorsTotal.Add(float64(len(result.ParseErrors)))
	metrics.CallablesByStatus.WithLabelValues("fresh").Set(float64(result.Report.FreshCount))
	metrics.CallablesByStatus.WithLabelValues("stale").Set(float64(result.Report.StaleCount))
	metrics.CallablesByStatus.WithLabelValues("undocumented").Set(float64(result.Report.UndocumentedCount))
	metrics.ScanDurationSeconds.Observe(duration.Seconds())

	printScanResult(result, globals)

	if len(result.ParseErrors) > 0 {
		os.Exit(1)
	}
}

func printScanResult(result *scan.Result, globals GlobalFlags) {
	summary := ScanResult{
		ScanID:          result.ScanID,
		RootDir:         result.RootDir,
		FilesScanned:    result.FilesScanned,
		CallablesTotal:  result.Report.Total(),
		Fresh:           result.Report.FreshCount,
		Stale:           result.Report.StaleCount,
		Undocumented:    result.Report.UndocumentedCount,
		ParseErrors:     len(result.ParseErrors),
		DeletedFiles:    result.DeletedFiles,
		StaleIDs:        result.Report.StaleIDs,
		UndocumentedIDs: result.Report.UndocumentedIDs,
		Timestamp:       time.Now().UTC(),
	}

	if globals.JSON {
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			errors.FatalError(errors.NewInternalError(
				"Cannot encode scan result",
				"JSON marshaling failed unexpectedly",
				"This is a bug. Please report it with your scan output",
				err,
			), true)
		}
		fmt.Println(string(encoded))
		return
	}

	ui.Header("Scan Complete")
	fmt.Printf("%s %s\n", ui.Label("Scan ID:"), summary.ScanID)
	fmt.Printf("%s %s\n", ui.Label("Root:"), summary.RootDir)
	fmt.Printf("Files Scanned: %s\n", ui.CountText(summary.FilesScanned))
	fmt.Printf("Callables:     %s\n", ui.CountText(summary.CallablesTotal))
	_, _ = ui.Green.Printf("  fresh:        %d\n", summary.Fresh)
	if summary.Stale > 0 {
		_, _ = ui.Yellow.Printf("  stale:        %d\n", summary.Stale)
	} else {
		fmt.Printf("  stale:        %d\n", summary.Stale)
	}
	if summary.Undocumented > 0 {
		_, _ = ui.Red.Printf("  undocumented: %d\n", summary.Undocumented)
	} else {
		fmt.Printf("  undocumented: %d\n", summary.Undocumented)
	}
	if summary.ParseErrors > 0 {
		_, _ = ui.Yellow.Printf("Parse Errors: %d\n", summary.ParseErrors)
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Printf("Deleted Files: %s\n", ui.CountText(len(summary.DeletedFiles)))
	}

	if summary.Stale > 0 {
		fmt.Println()
		ui.SubHeader("Stale callables:")
		for _, id := range summary.StaleIDs {
			fmt.Printf("  %s\n", id)
		}
	}
	if summary.Undocumented > 0 {
		fmt.Println()
		ui.SubHeader("Undocumented callables:")
		for _, id := range summary.UndocumentedIDs {
			fmt.Printf("  %s\n", id)
		}
	}
}

func defaultProjectID(target string) string {
	abs, err := absPath(target)
	if err != nil {
		return "project"
	}
	return baseName(abs)
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose >= 1:
		level = slog.LevelInfo
	}
	if globals.Quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
