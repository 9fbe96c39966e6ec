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

// Package scan ties file discovery, extraction, hashing, classification,
// and persistence into a single scan pass over a project tree.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kraklabs/gen-d/pkg/classify"
	"github.com/kraklabs/gen-d/pkg/driftmodel"
	"github.com/kraklabs/gen-d/pkg/extract"
	"github.com/kraklabs/gen-d/pkg/graph"
	"github.com/kraklabs/gen-d/pkg/hash"
	"github.com/kraklabs/gen-d/pkg/snapshot"
	"github.com/kraklabs/gen-d/pkg/sourcefile"
)

// ProgressFunc is called as files finish processing: current is 1-based,
// total is the file count for this scan.
type ProgressFunc func(current, total int)

// Result is everything one Orchestrator.Run pass produces.
type Result struct {
	ScanID       string
	RootDir      string
	Graph        *graph.Graph
	Report       driftmodel.DriftReport
	Explanations map[string]classify.Explanation // keyed by callable ID
	ParseErrors  []driftmodel.ParseError
	FilesScanned int
	DeletedFiles []string
}

// Orchestrator runs one scan pass: discover files, extract and hash
// callables, classify against the snapshot store, persist the new
// snapshots, and return the resulting graph and drift report.
type Orchestrator struct {
	Store    *snapshot.Store
	Config   Config
	Logger   *slog.Logger
	Progress ProgressFunc

	// DryRun diffs the current tree against the store without writing
	// anything back: no PutMany, PutEdges, RecordScan, or DeleteByFile.
	// Used by commands that report drift state without committing a new
	// baseline (status, explain).
	DryRun bool
}

// New returns an Orchestrator with cfg and store; logger may be nil, in
// which case slog.Default() is used.
func New(store *snapshot.Store, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{Store: store, Config: cfg, Logger: logger}
}

type parsedFile struct {
	path        string
	callables   []driftmodel.CallableRecord
	callSites   []driftmodel.CallSite
	parseErrors []driftmodel.ParseError
}

// Run executes one scan of root. It never returns early on a per-file
// error — those are collected into Result.ParseErrors — but does respect
// ctx cancellation between files, in which case it returns ctx.Err() and
// leaves the snapshot store untouched.
func (o *Orchestrator) Run(ctx context.Context, root string) (*Result, error) {
	root = filepath.Clean(root)

	files, err := discoverFiles(root, o.Config)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	o.Logger.Info("scan.discover.complete", "root", root, "file_count", len(files))

	workers := o.Config.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}

	parsed, err := o.parseFilesParallel(ctx, root, files, workers)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	var parseErrors []driftmodel.ParseError
	var allCallables []driftmodel.CallableRecord

	for _, pf := range parsed {
		for _, pe := range pf.parseErrors {
			pe := pe
			parseErrors = append(parseErrors, pe)
			o.Logger.Warn("scan.parse.error", "file", pf.path, "msg", pe.Message)
		}
		allCallables = append(allCallables, pf.callables...)
	}

	sort.Slice(allCallables, func(i, j int) bool { return allCallables[i].ID < allCallables[j].ID })

	// Nodes must exist before edges are added, so AddEdge can resolve a
	// callee name against a known identifier.
	for _, c := range allCallables {
		g.Add(c)
	}

	prior, err := o.Store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("load prior snapshots: %w", err)
	}

	classified := make([]driftmodel.CallableRecord, 0, len(allCallables))
	explanations := make(map[string]classify.Explanation, len(allCallables))
	for _, c := range allCallables {
		var snap *driftmodel.Snapshot
		if s, ok := prior[c.ID]; ok {
			snap = &s
		}
		exp := classify.Classify(c, snap)
		explanations[c.ID] = exp
		c.DriftStatus = exp.Status
		classified = append(classified, c)
		g.Add(c) // re-index now that DriftStatus is set
	}

	report := driftmodel.DriftReport{}
	for _, c := range classified {
		switch c.DriftStatus {
		case driftmodel.StatusFresh:
			report.FreshCount++
		case driftmodel.StatusStale:
			report.StaleCount++
			report.StaleIDs = append(report.StaleIDs, c.ID)
		case driftmodel.StatusUndocumented:
			report.UndocumentedCount++
			report.UndocumentedIDs = append(report.UndocumentedIDs, c.ID)
		}
	}

	calleeIndex := newCalleeIndex(classified)

	var persistEdges []snapshot.Edge
	for _, pf := range parsed {
		for _, site := range pf.callSites {
			resolved := calleeIndex.resolve(site.CalleeName)
			if resolved != "" {
				g.AddEdge(site.CallerID, resolved, site.CallLine)
				persistEdges = append(persistEdges, snapshot.Edge{CallerID: site.CallerID, CalleeID: resolved, CallLine: site.CallLine})
			} else {
				g.AddEdge(site.CallerID, site.CalleeName, site.CallLine)
			}
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	removed, err := deletedFiles(o.Store, files)
	if err != nil {
		return nil, fmt.Errorf("compute deleted files: %w", err)
	}

	var scanID string
	if o.DryRun {
		o.Logger.Info("scan.dry_run", "root", root, "files", len(files))
	} else {
		for _, path := range removed {
			if _, err := o.Store.DeleteByFile(path); err != nil {
				return nil, fmt.Errorf("purge deleted file %s: %w", path, err)
			}
		}

		scanID, err = o.Store.RecordScan(root, len(files), len(classified), len(parseErrors))
		if err != nil {
			return nil, fmt.Errorf("record scan: %w", err)
		}

		records := make([]driftmodel.Snapshot, 0, len(classified))
		for _, c := range classified {
			records = append(records, driftmodel.Snapshot{
				CallableID:          c.ID,
				FilePath:            c.FilePath,
				StartLine:           c.StartLine,
				EndLine:             c.EndLine,
				SemanticFingerprint: c.SemanticFingerprint,
				DocFingerprint:      c.DocFingerprint,
			})
		}
		if err := o.Store.PutMany(records, scanID); err != nil {
			return nil, fmt.Errorf("persist snapshots: %w", err)
		}

		if err := o.Store.PutEdges(persistEdges); err != nil {
			return nil, fmt.Errorf("persist edges: %w", err)
		}
	}

	o.Logger.Info("scan.complete",
		"scan_id", scanID,
		"files", len(files),
		"callables", len(classified),
		"fresh", report.FreshCount,
		"stale", report.StaleCount,
		"undocumented", report.UndocumentedCount,
		"parse_errors", len(parseErrors),
	)

	return &Result{
		ScanID:       scanID,
		RootDir:      root,
		Graph:        g,
		Report:       report,
		Explanations: explanations,
		ParseErrors:  parseErrors,
		FilesScanned: len(files),
		DeletedFiles: removed,
	}, nil
}

// calleeIndex resolves a textual callee (simple or dotted name) to a
// callable identifier by its simple name. A call site only ever names the
// callee the way it appears in source — self.method(), Module.func(), or
// a bare name — never the full qualified identifier, so resolution keys
// on the simple name and requires it to be unique across the scan.
type calleeIndex map[string][]string

func newCalleeIndex(callables []driftmodel.CallableRecord) calleeIndex {
	idx := make(calleeIndex, len(callables))
	for _, c := range callables {
		idx[c.Name] = append(idx[c.Name], c.ID)
	}
	return idx
}

// resolve returns the unique callable ID matching calleeName's simple
// name, or "" if there is no match or more than one (an ambiguous callee
// is recorded as unresolved rather than guessed at).
func (idx calleeIndex) resolve(calleeName string) string {
	simple := calleeName
	if i := strings.LastIndex(calleeName, "."); i >= 0 {
		simple = calleeName[i+1:]
	}
	ids := idx[simple]
	if len(ids) == 1 {
		return ids[0]
	}
	return ""
}

func (o *Orchestrator) parseFilesParallel(ctx context.Context, root string, files []string, workers int) ([]parsedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}

	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	results := make([]parsedFile, len(files))
	var progressCount int64
	total := len(files)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[i] = o.parseOne(root, files[i])
				current := atomic.AddInt64(&progressCount, 1)
				if o.Progress != nil {
					o.Progress(int(current), total)
				}
			}
		}()
	}
	wg.Wait()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return results, nil
}

func (o *Orchestrator) parseOne(root, relPath string) parsedFile {
	full := filepath.Join(root, relPath)
	src, err := sourcefile.Read(relPath, full)
	if err != nil {
		return parsedFile{path: relPath, parseErrors: []driftmodel.ParseError{{FilePath: relPath, Message: err.Error()}}}
	}

	moduleName := moduleNameFor(relPath)
	result, err := extract.Extract(src.Text, relPath, moduleName)
	if err != nil {
		if pe, ok := err.(*driftmodel.ParseError); ok {
			return parsedFile{path: relPath, parseErrors: []driftmodel.ParseError{*pe}}
		}
		return parsedFile{path: relPath, parseErrors: []driftmodel.ParseError{{FilePath: relPath, Message: err.Error()}}}
	}

	callables := make([]driftmodel.CallableRecord, 0, len(result.Callables))
	var hashErrors []driftmodel.ParseError
	for _, c := range result.Callables {
		semantic, err := hash.Semantic(c.SourceText)
		if err != nil {
			// Spec treats a hash failure the same as a parse error: the
			// callable is excluded from this scan's drift classification,
			// but the failure is counted rather than only logged.
			o.Logger.Warn("scan.hash.error", "file", relPath, "callable", c.ID, "err", err)
			hashErrors = append(hashErrors, driftmodel.ParseError{FilePath: relPath, Message: fmt.Sprintf("%s: %v", c.ID, err)})
			continue
		}
		c.SemanticFingerprint = semantic
		if c.HasDocstring() {
			c.DocFingerprint = hash.Doc(c.Docstring)
		}
		callables = append(callables, c)
	}

	return parsedFile{path: relPath, callables: callables, callSites: result.CallSites, parseErrors: hashErrors}
}

// moduleNameFor derives a dotted module name from a file path the way
// Python import resolution does: strip the extension, replace path
// separators with dots, and drop a trailing "__init__".
func moduleNameFor(relPath string) string {
	trimmed := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	parts := strings.Split(filepath.ToSlash(trimmed), "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
