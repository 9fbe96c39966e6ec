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

// Package classify applies the drift rule set to a callable's current and
// previously recorded fingerprints and produces a status plus a
// human-actionable explanation.
package classify

import "github.com/kraklabs/gen-d/pkg/driftmodel"

// Rule identifies which classification rule fired, in priority order.
type Rule int

const (
	// RuleUndocumented fires when the current callable has no docstring.
	RuleUndocumented Rule = iota + 1
	// RuleNewlyIntroduced fires when there is no prior snapshot.
	RuleNewlyIntroduced
	// RuleCodeUnchanged fires when the semantic fingerprint matches the snapshot.
	RuleCodeUnchanged
	// RuleDocUpdated fires when the doc fingerprint differs from the snapshot.
	RuleDocUpdated
	// RuleStale fires when none of the above apply.
	RuleStale
)

// Explanation is the structured justification the classifier produces
// alongside a status.
type Explanation struct {
	Status  driftmodel.DriftStatus
	Rule    Rule
	Reason  string
	Actions []string

	CurrentSemanticFingerprint string
	CurrentDocFingerprint      string
	StoredSemanticFingerprint  string
	StoredDocFingerprint       string
}

// Classify applies the drift rules, in order, to one callable's current
// record against its (possibly absent) prior snapshot. It is a total, pure
// function of its inputs.
func Classify(current driftmodel.CallableRecord, snapshot *driftmodel.Snapshot) Explanation {
	exp := Explanation{
		CurrentSemanticFingerprint: current.SemanticFingerprint,
		CurrentDocFingerprint:      current.DocFingerprint,
	}
	if snapshot != nil {
		exp.StoredSemanticFingerprint = snapshot.SemanticFingerprint
		exp.StoredDocFingerprint = snapshot.DocFingerprint
	}

	// Rule 1: no current docstring.
	if !current.HasDocstring() {
		exp.Status = driftmodel.StatusUndocumented
		exp.Rule = RuleUndocumented
		exp.Reason = "this callable currently has no docstring"
		exp.Actions = []string{
			"add a docstring describing what this callable does",
			"if this callable is intentionally undocumented, no further action is needed",
		}
		return exp
	}

	// Rule 2: no prior snapshot.
	if snapshot == nil {
		exp.Status = driftmodel.StatusFresh
		exp.Rule = RuleNewlyIntroduced
		exp.Reason = "this callable is newly introduced and already documented"
		exp.Actions = []string{
			"no action needed; this is the first recorded scan for this callable",
		}
		return exp
	}

	// Rule 3: code unchanged.
	if current.SemanticFingerprint == snapshot.SemanticFingerprint {
		exp.Status = driftmodel.StatusFresh
		exp.Rule = RuleCodeUnchanged
		exp.Reason = "the code is unchanged since the last scan"
		exp.Actions = []string{
			"no action needed; behavior has not changed since documentation was last reviewed",
		}
		return exp
	}

	// Rule 4: documentation was updated alongside the code change.
	if current.DocFingerprint != snapshot.DocFingerprint {
		exp.Status = driftmodel.StatusFresh
		exp.Rule = RuleDocUpdated
		exp.Reason = "code changed, but the documentation was updated alongside it"
		exp.Actions = []string{
			"no action needed; the documentation edit is evidence the author reviewed this change",
		}
		return exp
	}

	// Rule 5: stale.
	exp.Status = driftmodel.StatusStale
	exp.Rule = RuleStale
	exp.Reason = "code changed since the last scan, but the documentation was not touched"
	exp.Actions = []string{
		"review this callable's current behavior",
		"update its docstring to match, or confirm it is still accurate and touch it to clear this warning",
		"check callers for assumptions that may now be invalid",
	}
	return exp
}

// Report folds Classify over every callable of a scan, in input order, and
// returns the resulting counts and identifier lists. The fold is stable:
// the identifier order in StaleIDs/UndocumentedIDs matches the order
// callables were supplied in.
func Report(callables []driftmodel.CallableRecord, snapshots map[string]driftmodel.Snapshot) driftmodel.DriftReport {
	var report driftmodel.DriftReport

	for _, c := range callables {
		var snap *driftmodel.Snapshot
		if s, ok := snapshots[c.ID]; ok {
			snap = &s
		}
		exp := Classify(c, snap)
		switch exp.Status {
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

	return report
}

// Classified returns a copy of current with DriftStatus set by Classify.
func Classified(current driftmodel.CallableRecord, snapshot *driftmodel.Snapshot) driftmodel.CallableRecord {
	out := current
	out.DriftStatus = Classify(current, snapshot).Status
	return out
}
