// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/gen-d/pkg/driftmodel"
	"github.com/kraklabs/gen-d/pkg/snapshot"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *snapshot.Store) {
	t.Helper()
	store, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := DefaultConfig()
	cfg.Workers = 2
	return New(store, cfg, nil), store
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestOrchestrator_FirstScanClassifiesEverythingByDocstringPresence(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "m.py", `def documented():
    """Has docs."""
    return 1


def undocumented():
    return 2
`)

	orch, _ := newTestOrchestrator(t)
	result, err := orch.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesScanned)
	assert.Equal(t, 1, result.Report.FreshCount, "newly introduced + documented is fresh")
	assert.Equal(t, 1, result.Report.UndocumentedCount)
	assert.Empty(t, result.ParseErrors)
}

func TestOrchestrator_SecondScanDetectsStaleAndFresh(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "m.py", `def f():
    """Docs."""
    return 1


def g():
    """Docs."""
    return 1
`)

	orch, store := newTestOrchestrator(t)
	_, err := orch.Run(context.Background(), root)
	require.NoError(t, err)

	// f's code changes, g is untouched.
	writeProjectFile(t, root, "m.py", `def f():
    """Docs."""
    return 2


def g():
    """Docs."""
    return 1
`)

	orch2 := New(store, orch.Config, nil)
	result, err := orch2.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.StaleCount)
	assert.Equal(t, 1, result.Report.FreshCount)
	assert.Contains(t, result.Report.StaleIDs, "m.py:m.f")
}

func TestOrchestrator_DeletedFileIsPurgedFromStore(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.py", `def f():
    """Docs."""
    return 1
`)
	writeProjectFile(t, root, "b.py", `def g():
    """Docs."""
    return 1
`)

	orch, store := newTestOrchestrator(t)
	_, err := orch.Run(context.Background(), root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.py")))

	orch2 := New(store, orch.Config, nil)
	result, err := orch2.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"b.py"}, result.DeletedFiles)

	all, err := store.GetAll()
	require.NoError(t, err)
	_, stillThere := all["b.py:b.g"]
	assert.False(t, stillThere)
}

func TestOrchestrator_ResolvesCallEdgesBySimpleName(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "m.py", `def caller():
    """Docs."""
    return callee()


def callee():
    """Docs."""
    return 1
`)

	orch, _ := newTestOrchestrator(t)
	result, err := orch.Run(context.Background(), root)
	require.NoError(t, err)

	callees := result.Graph.Callees("m.py:m.caller")
	assert.Equal(t, []string{"m.py:m.callee"}, callees)
}

func TestOrchestrator_ParseErrorDoesNotAbortScan(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "good.py", `def f():
    """Docs."""
    return 1
`)
	// extremely malformed: unlikely to parse as any callable at all.
	writeProjectFile(t, root, "bad.py", "@@@ not python at all :::")

	orch, _ := newTestOrchestrator(t)
	result, err := orch.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesScanned)
	assert.Equal(t, 1, result.Report.FreshCount)
}

func TestOrchestrator_RespectsContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "m.py", `def f():
    return 1
`)

	orch, _ := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_EmptyCallableRecordsHaveFingerprints(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "m.py", `def f():
    """Docs."""
    return 1
`)

	orch, _ := newTestOrchestrator(t)
	result, err := orch.Run(context.Background(), root)
	require.NoError(t, err)

	exp, ok := result.Explanations["m.py:m.f"]
	require.True(t, ok)
	assert.Equal(t, driftmodel.StatusFresh, exp.Status)
	assert.Len(t, exp.CurrentSemanticFingerprint, 64)
	assert.Len(t, exp.CurrentDocFingerprint, 64)
}
