// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package sourcefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_ValidUTF8File(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "m.py")
	require.NoError(t, os.WriteFile(full, []byte("x = 1\n"), 0o644))

	f, err := Read("m.py", full)
	require.NoError(t, err)
	assert.Equal(t, "m.py", f.Path)
	assert.Equal(t, "x = 1\n", f.Text)
	assert.Len(t, f.Hash, 64)
	assert.Equal(t, int64(len("x = 1\n")), f.Size)
}

func TestRead_InvalidUTF8Errors(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "bad.py")
	require.NoError(t, os.WriteFile(full, []byte{0xff, 0xfe, 0x00}, 0o644))

	_, err := Read("bad.py", full)
	require.Error(t, err)
}

func TestRead_MissingFileErrors(t *testing.T) {
	_, err := Read("missing.py", filepath.Join(t.TempDir(), "missing.py"))
	require.Error(t, err)
}

func TestRead_HashIsStableForSameContent(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "m.py")
	require.NoError(t, os.WriteFile(full, []byte("same content"), 0o644))

	a, err := Read("m.py", full)
	require.NoError(t, err)
	b, err := Read("m.py", full)
	require.NoError(t, err)
	assert.Equal(t, a.Hash, b.Hash)
}
