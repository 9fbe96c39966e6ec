// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// projectRoot resolves the directory a scan is rooted at: the directory
// containing the resolved config file, or the current directory if no
// config has been created yet.
func projectRoot(configPath string) (string, error) {
	resolved, err := resolvedConfigPath(configPath)
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "", cwdErr
		}
		return absPath(cwd)
	}
	return absPath(filepath.Dir(filepath.Dir(resolved)))
}

// databasePath returns <project-root>/.gen-d/gen-d.db, the default
// snapshot store location.
func databasePath(root string) string {
	return filepath.Join(root, defaultConfigDir, "gen-d.db")
}

func resolvedConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return absPath(configPath)
	}
	if envPath := os.Getenv("GEND_CONFIG_PATH"); envPath != "" {
		return absPath(envPath)
	}
	path, err := findConfigFile()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return absPath(path)
}

func absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
