// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemantic_DeterministicAndReformatInvariant(t *testing.T) {
	a, err := Semantic("def f(x):\n    return x + 1\n")
	require.NoError(t, err)

	b, err := Semantic("def f(x):\n\n    return x + 1    # comment\n")
	require.NoError(t, err)

	assert.Equal(t, a, b, "reformatting and adding a comment must not change the semantic fingerprint")
	assert.Len(t, a, 64)
}

func TestSemantic_CodeChangeChangesDigest(t *testing.T) {
	a, err := Semantic("def f(x):\n    return x + 1\n")
	require.NoError(t, err)

	b, err := Semantic("def f(x):\n    return x + 2\n")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSemantic_InvalidSourceStillHashes(t *testing.T) {
	_, err := Semantic("def f(")
	require.NoError(t, err, "tree-sitter is error-tolerant; a partial parse still yields a token stream")
}

func TestDoc_TrimsOnlyLeadingTrailingWhitespace(t *testing.T) {
	a := Doc("  hello world  ")
	b := Doc("hello world")
	assert.Equal(t, a, b)

	c := Doc("hello\n\n  world")
	assert.NotEqual(t, a, c, "interior whitespace changes must change the digest")
}

func TestDoc_Deterministic(t *testing.T) {
	assert.Equal(t, Doc("same text"), Doc("same text"))
}
