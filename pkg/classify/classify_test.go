// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/gen-d/pkg/driftmodel"
)

func documented(semantic, doc string) driftmodel.CallableRecord {
	return driftmodel.CallableRecord{
		ID:                  "m.py:f",
		SemanticFingerprint: semantic,
		DocFingerprint:      doc,
		Docstring:           "does a thing",
	}
}

func undocumented(semantic string) driftmodel.CallableRecord {
	return driftmodel.CallableRecord{
		ID:                  "m.py:f",
		SemanticFingerprint: semantic,
	}
}

func TestClassify_UndocumentedTakesPriorityOverEverything(t *testing.T) {
	current := undocumented("sem-2")
	snap := &driftmodel.Snapshot{SemanticFingerprint: "sem-1", DocFingerprint: "doc-1"}

	exp := Classify(current, snap)
	assert.Equal(t, driftmodel.StatusUndocumented, exp.Status)
	assert.Equal(t, RuleUndocumented, exp.Rule)
}

func TestClassify_NewlyIntroducedWithNoPriorSnapshot(t *testing.T) {
	current := documented("sem-1", "doc-1")

	exp := Classify(current, nil)
	assert.Equal(t, driftmodel.StatusFresh, exp.Status)
	assert.Equal(t, RuleNewlyIntroduced, exp.Rule)
}

func TestClassify_CodeUnchangedIsFresh(t *testing.T) {
	current := documented("sem-1", "doc-1")
	snap := &driftmodel.Snapshot{SemanticFingerprint: "sem-1", DocFingerprint: "doc-old"}

	exp := Classify(current, snap)
	assert.Equal(t, driftmodel.StatusFresh, exp.Status)
	assert.Equal(t, RuleCodeUnchanged, exp.Rule)
}

func TestClassify_DocUpdatedAlongsideCodeChangeIsFresh(t *testing.T) {
	current := documented("sem-2", "doc-2")
	snap := &driftmodel.Snapshot{SemanticFingerprint: "sem-1", DocFingerprint: "doc-1"}

	exp := Classify(current, snap)
	assert.Equal(t, driftmodel.StatusFresh, exp.Status)
	assert.Equal(t, RuleDocUpdated, exp.Rule)
}

func TestClassify_CodeChangedWithoutDocChangeIsStale(t *testing.T) {
	current := documented("sem-2", "doc-1")
	snap := &driftmodel.Snapshot{SemanticFingerprint: "sem-1", DocFingerprint: "doc-1"}

	exp := Classify(current, snap)
	assert.Equal(t, driftmodel.StatusStale, exp.Status)
	assert.Equal(t, RuleStale, exp.Rule)
}

func TestReport_FoldsCountsAndPreservesOrder(t *testing.T) {
	callables := []driftmodel.CallableRecord{
		{ID: "a", SemanticFingerprint: "1", DocFingerprint: "d", Docstring: "x"},
		{ID: "b", SemanticFingerprint: "2", DocFingerprint: "d", Docstring: "x"},
		{ID: "c", SemanticFingerprint: "3"},
	}
	snapshots := map[string]driftmodel.Snapshot{
		"a": {SemanticFingerprint: "1", DocFingerprint: "d"},
		"b": {SemanticFingerprint: "1", DocFingerprint: "d"},
	}

	report := Report(callables, snapshots)
	assert.Equal(t, 1, report.FreshCount)
	assert.Equal(t, 1, report.StaleCount)
	assert.Equal(t, 1, report.UndocumentedCount)
	assert.Equal(t, []string{"b"}, report.StaleIDs)
	assert.Equal(t, []string{"c"}, report.UndocumentedIDs)
	assert.Equal(t, 3, report.Total())
}

func TestClassified_SetsDriftStatusWithoutMutatingInput(t *testing.T) {
	current := undocumented("sem-1")
	out := Classified(current, nil)
	assert.Equal(t, driftmodel.StatusUndocumented, out.DriftStatus)
	assert.Equal(t, driftmodel.DriftStatus(""), current.DriftStatus, "Classified must not mutate its argument")
}
