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

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// discoverFiles walks root and returns the relative paths of every source
// file in scope: matching one of cfg.Extensions and not matching any of
// cfg.ExcludeGlobs. Results are sorted for reproducible ordering.
func discoverFiles(root string, cfg Config) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		normalized := filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesAnyGlob(normalized+"/", cfg.ExcludeGlobs) {
				return fs.SkipDir
			}
			return nil
		}

		if matchesAnyGlob(normalized, cfg.ExcludeGlobs) {
			return nil
		}
		if !hasExtension(normalized, cfg.Extensions) {
			return nil
		}
		out = append(out, normalized)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func matchesAnyGlob(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchesGlob(path, p) {
			return true
		}
	}
	return false
}

// matchesGlob reports whether path matches pattern, where pattern may use
// "**" to match across path separators and "*"/"?"/"[...]" to match within
// one segment, in the style of the project's exclude-glob configuration
// (e.g. "node_modules/**", "*.pyc").
func matchesGlob(path, pattern string) bool {
	pathSegs := strings.Split(strings.TrimSuffix(path, "/"), "/")
	patSegs := strings.Split(strings.TrimSuffix(pattern, "/"), "/")
	return matchSegments(pathSegs, patSegs)
}

func matchSegments(path, pattern []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchSegments(path[i:], pattern[1:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], path[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(path[1:], pattern[1:])
}
