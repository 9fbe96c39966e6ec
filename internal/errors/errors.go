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

// Package errors defines gen-d's user-facing error type: every CLI failure
// is reported as a title, a detail explaining what happened, and a
// suggestion for what to do about it, instead of a bare Go error string.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind classifies a UserError for JSON consumers (MCP-style clients,
// scripts) that want to branch on failure category without parsing text.
type Kind string

const (
	KindConfig     Kind = "config"
	KindDatabase   Kind = "database"
	KindParse      Kind = "parse"
	KindPermission Kind = "permission"
	KindInput      Kind = "input"
	KindNetwork    Kind = "network"
	KindInternal   Kind = "internal"
)

// UserError is an actionable, user-facing failure: what went wrong
// (Title), why (Detail), and what to do about it (Suggestion). Cause, if
// present, is the underlying error and participates in errors.Unwrap.
type UserError struct {
	Kind       Kind
	Title      string
	Detail     string
	Suggestion string
	Cause      error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *UserError) Unwrap() error { return e.Cause }

// jsonError is the wire shape Format(true) emits.
type jsonError struct {
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion"`
	Cause      string `json:"cause,omitempty"`
}

// Format renders e for a human terminal, or as a single JSON line when
// asJSON is true — so a caller running with --json never gets free text
// mixed into its output stream.
func (e *UserError) Format(asJSON bool) string {
	if asJSON {
		je := jsonError{Kind: e.Kind, Title: e.Title, Detail: e.Detail, Suggestion: e.Suggestion}
		if e.Cause != nil {
			je.Cause = e.Cause.Error()
		}
		encoded, err := json.Marshal(je)
		if err != nil {
			return fmt.Sprintf(`{"kind":"internal","title":"cannot encode error","detail":%q}`, err.Error())
		}
		return string(encoded)
	}

	out := fmt.Sprintf("Error: %s\n", e.Title)
	if e.Detail != "" {
		out += fmt.Sprintf("  %s\n", e.Detail)
	}
	if e.Cause != nil {
		out += fmt.Sprintf("  cause: %v\n", e.Cause)
	}
	if e.Suggestion != "" {
		out += fmt.Sprintf("\n  %s\n", e.Suggestion)
	}
	return out
}

func newError(kind Kind, title, detail, suggestion string, cause error) *UserError {
	return &UserError{Kind: kind, Title: title, Detail: detail, Suggestion: suggestion, Cause: cause}
}

// NewConfigError reports a problem reading or validating project config.
func NewConfigError(title, detail, suggestion string, cause error) error {
	return newError(KindConfig, title, detail, suggestion, cause)
}

// NewDatabaseError reports a problem opening, migrating, or querying the
// snapshot store.
func NewDatabaseError(title, detail, suggestion string, cause error) error {
	return newError(KindDatabase, title, detail, suggestion, cause)
}

// NewParseError reports a source file that failed to extract. Distinct
// from driftmodel.ParseError, which is a per-file, non-fatal scan result;
// this is for a parse failure severe enough to abort the whole command.
func NewParseError(title, detail, suggestion string, cause error) error {
	return newError(KindParse, title, detail, suggestion, cause)
}

// NewPermissionError reports a filesystem permission failure.
func NewPermissionError(title, detail, suggestion string, cause error) error {
	return newError(KindPermission, title, detail, suggestion, cause)
}

// NewInternalError reports a failure that should not be reachable by any
// valid input or configuration — a bug, not a user mistake.
func NewInternalError(title, detail, suggestion string, cause error) error {
	return newError(KindInternal, title, detail, suggestion, cause)
}

// NewNetworkError reports a failure reaching the optional metrics/serve
// endpoint or any other network-dependent operation.
func NewNetworkError(title, detail, suggestion string, cause error) error {
	return newError(KindNetwork, title, detail, suggestion, cause)
}

// NewInputError reports bad user input: a missing flag, an invalid
// argument, a missing confirmation. There is never an underlying cause —
// the user is the cause.
func NewInputError(title, detail, suggestion string) error {
	return newError(KindInput, title, detail, suggestion, nil)
}

// FatalError prints err to stderr — as JSON if jsonMode, otherwise as a
// formatted message — and exits the process with status 1. A plain
// (non-UserError) err is wrapped as an internal error so callers can pass
// any error straight through.
func FatalError(err error, jsonMode bool) {
	ue, ok := err.(*UserError)
	if !ok {
		ue = &UserError{Kind: KindInternal, Title: "Unexpected error", Detail: err.Error()}
	}
	fmt.Fprintln(os.Stderr, ue.Format(jsonMode))
	os.Exit(1)
}
