// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigError_WrapsCauseAndUnwraps(t *testing.T) {
	cause := errors.New("file not found")
	err := NewConfigError("Cannot read configuration", "detail", "suggestion", cause)

	ue, ok := err.(*UserError)
	require.True(t, ok)
	assert.Equal(t, KindConfig, ue.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestNewInputError_HasNoCause(t *testing.T) {
	err := NewInputError("Missing argument", "detail", "suggestion")
	ue, ok := err.(*UserError)
	require.True(t, ok)
	assert.Equal(t, KindInput, ue.Kind)
	assert.Nil(t, ue.Cause)
}

func TestFormat_HumanReadable(t *testing.T) {
	err := NewDatabaseError("Cannot open database", "disk full", "free up space", errors.New("ENOSPC"))
	ue := err.(*UserError)

	text := ue.Format(false)
	assert.Contains(t, text, "Cannot open database")
	assert.Contains(t, text, "disk full")
	assert.Contains(t, text, "free up space")
}

func TestFormat_JSONIsValidAndRoundtrips(t *testing.T) {
	err := NewPermissionError("Cannot write file", "permission denied", "check permissions", errors.New("EACCES"))
	ue := err.(*UserError)

	line := ue.Format(true)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "permission", decoded["kind"])
	assert.Equal(t, "Cannot write file", decoded["title"])
	assert.Contains(t, decoded["cause"], "EACCES")
}

func TestEachConstructor_SetsExpectedKind(t *testing.T) {
	cause := errors.New("cause")
	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"config", NewConfigError("t", "d", "s", cause), KindConfig},
		{"database", NewDatabaseError("t", "d", "s", cause), KindDatabase},
		{"parse", NewParseError("t", "d", "s", cause), KindParse},
		{"permission", NewPermissionError("t", "d", "s", cause), KindPermission},
		{"internal", NewInternalError("t", "d", "s", cause), KindInternal},
		{"network", NewNetworkError("t", "d", "s", cause), KindNetwork},
		{"input", NewInputError("t", "d", "s"), KindInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ue, ok := tc.err.(*UserError)
			require.True(t, ok)
			assert.Equal(t, tc.kind, ue.Kind)
		})
	}
}
