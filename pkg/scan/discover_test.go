// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x = 1\n"), 0o644))
}

func TestDiscoverFiles_MatchesExtensionsAndSkipsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/module.py")
	writeFile(t, root, "pkg/helper.py")
	writeFile(t, root, "pkg/readme.md")
	writeFile(t, root, "node_modules/vendor/dep.py")
	writeFile(t, root, "__pycache__/module.pyc")

	cfg := DefaultConfig()
	files, err := discoverFiles(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg/helper.py", "pkg/module.py"}, files)
}

func TestDiscoverFiles_SortedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.py")
	writeFile(t, root, "a.py")
	writeFile(t, root, "m.py")

	cfg := DefaultConfig()
	files, err := discoverFiles(root, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py", "m.py", "z.py"}, files)
}

func TestMatchesGlob_DoubleStarCrossesSegments(t *testing.T) {
	assert.True(t, matchesGlob("vendor/pkg/dep.py", "vendor/**"))
	assert.True(t, matchesGlob("a/b/c/d.pyc", "**/d.pyc"))
	assert.False(t, matchesGlob("vendored/dep.py", "vendor/**"))
}

func TestMatchesGlob_SingleStarWithinSegment(t *testing.T) {
	assert.True(t, matchesGlob("module.pyc", "*.pyc"))
	assert.False(t, matchesGlob("pkg/module.pyc", "*.pyc"))
}
