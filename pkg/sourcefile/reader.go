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

// Package sourcefile reads a file as UTF-8 text and surfaces decoding
// errors. It is the leaf of the pipeline: every other component works on
// the string this package hands back.
package sourcefile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"unicode/utf8"
)

// File is the result of reading one source file.
type File struct {
	Path string // relative to the scan root
	Text string
	Hash string // SHA-256 hex digest of the raw bytes
	Size int64
}

// Read loads fullPath from disk and validates it as UTF-8. The spec treats
// encoding errors the same as parse errors: both are per-file failures
// that do not abort a scan, so Read returns a plain error for the
// orchestrator to record and move past.
func Read(relPath, fullPath string) (*File, error) {
	content, err := os.ReadFile(fullPath) //nolint:gosec // G304: path comes from a directory walk under the scan root
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: not valid UTF-8", relPath)
	}

	sum := sha256.Sum256(content)
	return &File{
		Path: relPath,
		Text: string(content),
		Hash: hex.EncodeToString(sum[:]),
		Size: int64(len(content)),
	}, nil
}
