// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hash reduces canonical text and docstring text to the fixed-width
// hex digests the rest of the system treats as semantic and documentation
// fingerprints.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/kraklabs/gen-d/pkg/normalize"
)

// Error wraps a normalization failure encountered while hashing.
type Error struct {
	FilePath string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("hash: %s: %v", e.FilePath, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Semantic computes the 64-character lowercase hex SHA-256 digest of the
// canonical form of a callable's source text. It is deterministic and
// invariant under reformatting, comment edits, and docstring edits, per
// the Normalizer's contract.
func Semantic(sourceText string) (string, error) {
	canonical, err := normalize.Normalize(sourceText)
	if err != nil {
		return "", &Error{Err: err}
	}
	return hexDigest(canonical), nil
}

// Doc computes the documentation fingerprint: SHA-256 of the docstring text
// after stripping leading/trailing ASCII whitespace only. Interior
// whitespace is preserved, so reflowing a docstring changes the digest.
func Doc(docstringText string) string {
	return hexDigest(stripASCII(docstringText))
}

func hexDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func stripASCII(s string) string {
	start := 0
	for start < len(s) && isSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
