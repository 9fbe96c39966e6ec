// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/gen-d/pkg/driftmodel"
)

func TestGraph_AddAndNode(t *testing.T) {
	g := New()
	g.Add(driftmodel.CallableRecord{ID: "a.py:f", FilePath: "a.py", DriftStatus: driftmodel.StatusFresh})

	c, ok := g.Node("a.py:f")
	assert.True(t, ok)
	assert.Equal(t, "a.py", c.FilePath)

	_, ok = g.Node("missing")
	assert.False(t, ok)
}

func TestGraph_AddReplacesAndReindexes(t *testing.T) {
	g := New()
	g.Add(driftmodel.CallableRecord{ID: "a.py:f", FilePath: "a.py", DriftStatus: driftmodel.StatusStale})
	g.Add(driftmodel.CallableRecord{ID: "a.py:f", FilePath: "a.py", DriftStatus: driftmodel.StatusFresh})

	assert.Equal(t, []string{"a.py:f"}, g.ByStatus(driftmodel.StatusFresh))
	assert.Empty(t, g.ByStatus(driftmodel.StatusStale))
}

func TestGraph_AddEdgeResolvedVsPlaceholder(t *testing.T) {
	g := New()
	g.Add(driftmodel.CallableRecord{ID: "a.py:f", FilePath: "a.py"})
	g.Add(driftmodel.CallableRecord{ID: "a.py:g", FilePath: "a.py"})

	g.AddEdge("a.py:f", "a.py:g", 10)
	g.AddEdge("a.py:f", "unknown_callee", 11)

	assert.Equal(t, []string{"a.py:g"}, g.Callees("a.py:f"))
	assert.Equal(t, []string{"a.py:f"}, g.Callers("a.py:g"))
}

func TestGraph_SelfEdgeAndCycleTolerant(t *testing.T) {
	g := New()
	g.Add(driftmodel.CallableRecord{ID: "a", FilePath: "a.py"})
	g.Add(driftmodel.CallableRecord{ID: "b", FilePath: "a.py"})

	g.AddEdge("a", "a", 1)   // recursion
	g.AddEdge("a", "b", 2)
	g.AddEdge("b", "a", 3)   // mutual recursion

	assert.ElementsMatch(t, []string{"a", "b"}, g.Callees("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, g.Callers("a"))
}

func TestGraph_ByFileAndByStatus(t *testing.T) {
	g := New()
	g.Add(driftmodel.CallableRecord{ID: "a", FilePath: "x.py", DriftStatus: driftmodel.StatusFresh})
	g.Add(driftmodel.CallableRecord{ID: "b", FilePath: "x.py", DriftStatus: driftmodel.StatusStale})
	g.Add(driftmodel.CallableRecord{ID: "c", FilePath: "y.py", DriftStatus: driftmodel.StatusStale})

	assert.ElementsMatch(t, []string{"a", "b"}, g.ByFile("x.py"))
	assert.ElementsMatch(t, []string{"b", "c"}, g.ByStatus(driftmodel.StatusStale))
}

func TestGraph_AffectedByComputesAncestorClosure(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.Add(driftmodel.CallableRecord{ID: id, FilePath: "x.py"})
	}
	// d calls c calls b calls a; a changes.
	g.AddEdge("d", "c", 1)
	g.AddEdge("c", "b", 2)
	g.AddEdge("b", "a", 3)

	affected := g.AffectedBy([]string{"a"})
	assert.Contains(t, affected, "a")
	assert.Contains(t, affected, "b")
	assert.Contains(t, affected, "c")
	assert.Contains(t, affected, "d")
}

func TestGraph_AffectedByTerminatesOnCycles(t *testing.T) {
	g := New()
	g.Add(driftmodel.CallableRecord{ID: "a", FilePath: "x.py"})
	g.Add(driftmodel.CallableRecord{ID: "b", FilePath: "x.py"})
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "a", 2)

	affected := g.AffectedBy([]string{"a"})
	assert.Len(t, affected, 2)
}
