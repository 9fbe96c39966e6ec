// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_StripsDocstringFromFunction(t *testing.T) {
	withDoc := `def f(x):
    """Returns x plus one."""
    return x + 1
`
	withoutDoc := `def f(x):
    return x + 1
`
	a, err := Normalize(withDoc)
	require.NoError(t, err)
	b, err := Normalize(withoutDoc)
	require.NoError(t, err)
	assert.Equal(t, a, b, "a docstring edit must not change the canonical form")
}

func TestNormalize_DocstringOnlyBodyBecomesPass(t *testing.T) {
	docOnly := `def f():
    """Just a docstring."""
`
	a, err := Normalize(docOnly)
	require.NoError(t, err)
	assert.Contains(t, a, "pass")
}

func TestNormalize_StripsComments(t *testing.T) {
	withComment := `def f(x):
    # a comment
    return x + 1
`
	withoutComment := `def f(x):
    return x + 1
`
	a, err := Normalize(withComment)
	require.NoError(t, err)
	b, err := Normalize(withoutComment)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalize_WhitespaceReformattingInvariant(t *testing.T) {
	a, err := Normalize("def f(x):\n    return x+1\n")
	require.NoError(t, err)
	b, err := Normalize("def f(x):\n\n\n    return x+1\n\n")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalize_StatementChangeProducesDifferentOutput(t *testing.T) {
	a, err := Normalize("def f(x):\n    return x + 1\n")
	require.NoError(t, err)
	b, err := Normalize("def f(x):\n    return x + 2\n")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNormalize_FStringIsNeverTreatedAsDocstring(t *testing.T) {
	a, err := Normalize(`def f(x):
    f"not a docstring {x}"
    return x
`)
	require.NoError(t, err)
	assert.Contains(t, a, "not a docstring")
}
