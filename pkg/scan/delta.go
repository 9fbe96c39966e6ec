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

import "github.com/kraklabs/gen-d/pkg/snapshot"

// deletedFiles returns every file path the store has nodes for that is not
// present in currentFiles: files removed from disk (or moved out of scope)
// since the last recorded scan. The orchestrator purges their nodes before
// persisting the new scan so stale identifiers never linger in the graph.
func deletedFiles(store *snapshot.Store, currentFiles []string) ([]string, error) {
	allSnapshots, err := store.GetAll()
	if err != nil {
		return nil, err
	}

	currentSet := make(map[string]struct{}, len(currentFiles))
	for _, f := range currentFiles {
		currentSet[f] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, snap := range allSnapshots {
		if _, already := seen[snap.FilePath]; already {
			continue
		}
		seen[snap.FilePath] = struct{}{}
		if _, present := currentSet[snap.FilePath]; !present {
			out = append(out, snap.FilePath)
		}
	}
	return out, nil
}
