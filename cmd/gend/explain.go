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
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/gen-d/internal/errors"
	"github.com/kraklabs/gen-d/internal/ui"
	"github.com/kraklabs/gen-d/pkg/classify"
	"github.com/kraklabs/gen-d/pkg/driftmodel"
	"github.com/kraklabs/gen-d/pkg/scan"
	"github.com/kraklabs/gen-d/pkg/snapshot"
)

// fingerprintDisplayLen is how much of a fingerprint explain ever prints
// or serializes: a 16-char hex prefix, never the full digest.
const fingerprintDisplayLen = 16

// ExplainResult is the JSON-serializable explanation for one callable.
type ExplainResult struct {
	ID                         string   `json:"id"`
	Status                     string   `json:"status"`
	Rule                       string   `json:"rule"`
	Reason                     string   `json:"reason"`
	Actions                    []string `json:"actions"`
	CurrentSemanticFingerprint string   `json:"current_semantic_fingerprint"`
	CurrentDocFingerprint      string   `json:"current_doc_fingerprint,omitempty"`
	StoredSemanticFingerprint  string   `json:"stored_semantic_fingerprint,omitempty"`
	StoredDocFingerprint       string   `json:"stored_doc_fingerprint,omitempty"`
}

// runExplain executes 'gend explain <id>': performs a full, non-persisting
// rescan of the project (the same way 'gend status' does) and looks up one
// callable by full identifier or unambiguous suffix match against the
// freshly extracted set, not the stored snapshots. This is what lets a
// callable introduced since the last 'gend scan' be explained at all.
func runExplain(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	dbOverride := fs.String("db", "", "Override the snapshot database path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gend explain <id> [path] [options]

Explain why a callable was classified as fresh, stale, or undocumented.
<id> may be a full callable identifier or an unambiguous suffix of one,
e.g. a bare function name.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		errors.FatalError(errors.NewInputError(
			"Missing callable identifier",
			"'gend explain' requires an <id> argument",
			"Run 'gend status --json' to list known callable identifiers",
		), globals.JSON)
	}
	query := fs.Arg(0)

	root, err := projectRoot(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if fs.NArg() > 1 {
		root, err = absPath(fs.Arg(1))
		if err != nil {
			errors.FatalError(err, globals.JSON)
		}
	}

	dbPath := databasePath(root)
	if *dbOverride != "" {
		dbPath = *dbOverride
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = DefaultConfig(defaultProjectID(root))
	}

	store, err := snapshot.Open(dbPath)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Cannot open snapshot database",
			fmt.Sprintf("Failed to open %s", dbPath),
			"Run 'gend scan' at least once before using 'gend explain'",
			err,
		), globals.JSON)
	}
	defer func() { _ = store.Close() }()

	orch := scan.New(store, cfg.ToScanConfig(), newLogger(globals))
	orch.DryRun = true
	result, err := orch.Run(context.Background(), root)
	if err != nil {
		errors.FatalError(errors.NewDatabaseError(
			"Rescan failed",
			"An error occurred while re-scanning the project",
			"Check the error details above and try again",
			err,
		), globals.JSON)
	}

	id, err := resolveCallableID(result.Explanations, query)
	if err != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot resolve callable identifier",
			err.Error(),
			"Run 'gend status --json' to list known callable identifiers",
		), globals.JSON)
	}

	printExplainResult(id, result.Explanations[id], globals)
}

// resolveCallableID finds the one identifier in explanations exactly
// matching or uniquely ending in query. It errors on zero or more than one
// match. explanations is keyed by every callable extracted in the current
// rescan, so a callable with no prior snapshot is still resolvable here.
func resolveCallableID(explanations map[string]classify.Explanation, query string) (string, error) {
	if _, ok := explanations[query]; ok {
		return query, nil
	}
	var matches []string
	for id := range explanations {
		if strings.HasSuffix(id, query) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no callable matches %q", query)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d callables; give a longer suffix: %s", query, len(matches), strings.Join(matches, ", "))
	}
}

// truncateFingerprint returns at most the first 16 characters of fp,
// unabridged if it is already shorter (including empty, for a callable
// with no docstring or no prior snapshot).
func truncateFingerprint(fp string) string {
	if len(fp) <= fingerprintDisplayLen {
		return fp
	}
	return fp[:fingerprintDisplayLen]
}

func printExplainResult(id string, exp classify.Explanation, globals GlobalFlags) {
	currentSemantic := truncateFingerprint(exp.CurrentSemanticFingerprint)
	currentDoc := truncateFingerprint(exp.CurrentDocFingerprint)
	storedSemantic := truncateFingerprint(exp.StoredSemanticFingerprint)
	storedDoc := truncateFingerprint(exp.StoredDocFingerprint)

	if globals.JSON {
		result := ExplainResult{
			ID:                         id,
			Status:                     string(exp.Status),
			Rule:                       ruleName(exp.Rule),
			Reason:                     exp.Reason,
			Actions:                    exp.Actions,
			CurrentSemanticFingerprint: currentSemantic,
			CurrentDocFingerprint:      currentDoc,
			StoredSemanticFingerprint:  storedSemantic,
			StoredDocFingerprint:       storedDoc,
		}
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			errors.FatalError(errors.NewInternalError(
				"Cannot encode explain result",
				"JSON marshaling failed unexpectedly",
				"This is a bug. Please report it with your explain output",
				err,
			), true)
		}
		fmt.Println(string(encoded))
		return
	}

	ui.Header(id)
	fmt.Printf("%s %s\n", ui.Label("Status:"), statusText(exp.Status))
	fmt.Printf("%s %s\n", ui.Label("Rule:"), ruleName(exp.Rule))
	fmt.Printf("%s %s\n", ui.Label("Reason:"), exp.Reason)
	if len(exp.Actions) > 0 {
		fmt.Println()
		ui.SubHeader("Suggested actions:")
		for _, action := range exp.Actions {
			fmt.Printf("  - %s\n", action)
		}
	}
	fmt.Println()
	ui.SubHeader("Fingerprints:")
	fmt.Printf("  current semantic: %s\n", ui.DimText(currentSemantic))
	fmt.Printf("  stored semantic:  %s\n", ui.DimText(storedSemantic))
	fmt.Printf("  current doc:      %s\n", ui.DimText(currentDoc))
	fmt.Printf("  stored doc:       %s\n", ui.DimText(storedDoc))
}

func statusText(status driftmodel.DriftStatus) string {
	switch status {
	case "fresh":
		return ui.Green.Sprint("fresh")
	case "stale":
		return ui.Yellow.Sprint("stale")
	case "undocumented":
		return ui.Red.Sprint("undocumented")
	default:
		return string(status)
	}
}

func ruleName(rule classify.Rule) string {
	switch rule {
	case classify.RuleUndocumented:
		return "undocumented"
	case classify.RuleNewlyIntroduced:
		return "newly-introduced"
	case classify.RuleCodeUnchanged:
		return "code-unchanged"
	case classify.RuleDocUpdated:
		return "doc-updated"
	case classify.RuleStale:
		return "stale"
	default:
		return "unknown"
	}
}
