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

package scan

import "runtime"

// Config controls one orchestrator run: which files are in scope and how
// much parallelism to use.
type Config struct {
	// ExcludeGlobs are glob patterns (matched against the path relative to
	// the scan root) for files and directories to skip.
	ExcludeGlobs []string

	// Workers is the size of the file-processing worker pool. Zero means
	// DefaultConfig's value (GOMAXPROCS).
	Workers int

	// Extensions lists the file extensions (including the leading dot)
	// considered source files. Defaults to [".py"].
	Extensions []string
}

// DefaultConfig returns the exclude list and worker count every scan uses
// unless the project config overrides them.
func DefaultConfig() Config {
	return Config{
		ExcludeGlobs: []string{
			".git/**",
			".gen-d/**",
			"node_modules/**",
			"vendor/**",
			"__pycache__/**",
			"*.pyc",
			"dist/**",
			"build/**",
			".venv/**",
			"venv/**",
		},
		Workers:    runtime.GOMAXPROCS(0),
		Extensions: []string{".py"},
	}
}
