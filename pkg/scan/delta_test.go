// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/gen-d/pkg/driftmodel"
	"github.com/kraklabs/gen-d/pkg/snapshot"
)

func TestDeletedFiles_ReportsFilesNoLongerPresent(t *testing.T) {
	store, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.PutMany([]driftmodel.Snapshot{
		{CallableID: "a.py:f", FilePath: "a.py", SemanticFingerprint: "1"},
		{CallableID: "b.py:g", FilePath: "b.py", SemanticFingerprint: "2"},
		{CallableID: "b.py:h", FilePath: "b.py", SemanticFingerprint: "3"},
	}, "scan-1"))

	removed, err := deletedFiles(store, []string{"a.py"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.py"}, removed)
}

func TestDeletedFiles_EmptyWhenNothingRemoved(t *testing.T) {
	store, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.PutMany([]driftmodel.Snapshot{
		{CallableID: "a.py:f", FilePath: "a.py", SemanticFingerprint: "1"},
	}, "scan-1"))

	removed, err := deletedFiles(store, []string{"a.py", "b.py"})
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestDeletedFiles_NoDuplicatesForMultiCallableFiles(t *testing.T) {
	store, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.PutMany([]driftmodel.Snapshot{
		{CallableID: "a.py:f", FilePath: "a.py", SemanticFingerprint: "1"},
		{CallableID: "a.py:g", FilePath: "a.py", SemanticFingerprint: "2"},
	}, "scan-1"))

	removed, err := deletedFiles(store, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, removed)
}
