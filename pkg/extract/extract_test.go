// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findByName(t *testing.T, result *Result, name string) (idx int) {
	t.Helper()
	for i, c := range result.Callables {
		if c.Name == name {
			return i
		}
	}
	require.Failf(t, "callable not found", "name=%s", name)
	return -1
}

func TestExtract_TopLevelFunctionWithDocstring(t *testing.T) {
	src := `def greet(name):
    """Say hello to name."""
    return f"hello {name}"
`
	result, err := Extract(src, "greeter.py", "greeter")
	require.NoError(t, err)
	require.Len(t, result.Callables, 1)

	c := result.Callables[0]
	assert.Equal(t, "greet", c.Name)
	assert.Equal(t, "greeter.py:greeter.greet", c.ID)
	assert.False(t, c.IsMethod)
	assert.Equal(t, "Say hello to name.", c.Docstring)
	assert.True(t, c.HasDocstring())
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, 3, c.EndLine)
}

func TestExtract_MethodInsideClassIsQualified(t *testing.T) {
	src := `class Greeter:
    def greet(self, name):
        return name
`
	result, err := Extract(src, "greeter.py", "greeter")
	require.NoError(t, err)
	require.Len(t, result.Callables, 1)

	c := result.Callables[0]
	assert.True(t, c.IsMethod)
	assert.Equal(t, "Greeter", c.ClassName)
	assert.Equal(t, "greeter.py:greeter.Greeter.greet", c.ID)
	assert.Empty(t, c.Docstring)
}

func TestExtract_NestedFunctionRecordsEnclosingCallables(t *testing.T) {
	src := `def outer():
    def inner():
        return 1
    return inner()
`
	result, err := Extract(src, "m.py", "m")
	require.NoError(t, err)
	require.Len(t, result.Callables, 2)

	inner := result.Callables[findByName(t, result, "inner")]
	assert.Equal(t, []string{"outer"}, inner.EnclosingCallables)
	assert.Equal(t, "m.py:m.outer.inner", inner.ID)
}

func TestExtract_CallSitesAttributeToEnclosingCallable(t *testing.T) {
	src := `def a():
    return b()

def b():
    return 1
`
	result, err := Extract(src, "m.py", "m")
	require.NoError(t, err)
	require.Len(t, result.CallSites, 1)

	site := result.CallSites[0]
	assert.Equal(t, "m.py:m.a", site.CallerID)
	assert.Equal(t, "b", site.CalleeName)
}

func TestExtract_ModuleLevelCallIsNotACallSite(t *testing.T) {
	src := `print("hi")

def f():
    return 1
`
	result, err := Extract(src, "m.py", "m")
	require.NoError(t, err)
	assert.Empty(t, result.CallSites)
}

func TestExtract_FStringIsNeverADocstring(t *testing.T) {
	src := `def f(x):
    f"not a docstring {x}"
    return x
`
	result, err := Extract(src, "m.py", "m")
	require.NoError(t, err)
	require.Len(t, result.Callables, 1)
	assert.Empty(t, result.Callables[0].Docstring)
}

func TestExtract_DecoratedFunctionSpanIncludesDecorator(t *testing.T) {
	src := `@staticmethod
def f():
    return 1
`
	result, err := Extract(src, "m.py", "m")
	require.NoError(t, err)
	require.Len(t, result.Callables, 1)
	assert.Contains(t, result.Callables[0].SourceText, "@staticmethod")
}

func TestExtract_InvalidSourceReturnsParseError(t *testing.T) {
	_, err := Extract("def f(:::", "m.py", "m")
	require.Error(t, err)
}

func TestExtract_EmptyFileHasNoCallables(t *testing.T) {
	result, err := Extract("", "m.py", "m")
	require.NoError(t, err)
	assert.Empty(t, result.Callables)
}
