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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/gen-d/internal/errors"
	"github.com/kraklabs/gen-d/pkg/scan"
)

const (
	defaultConfigDir  = ".gen-d"
	defaultConfigFile = "project.yaml"
	configVersion     = "1"
)

// Config represents the .gen-d/project.yaml configuration file.
type Config struct {
	Version   string        `yaml:"version"`
	ProjectID string        `yaml:"project_id"`
	Scan      ScanConfig    `yaml:"scan"`
	Metrics   MetricsConfig `yaml:"metrics,omitempty"`
}

// ScanConfig mirrors pkg/scan.Config in a YAML-friendly shape.
type ScanConfig struct {
	Exclude    []string `yaml:"exclude"`
	Extensions []string `yaml:"extensions"`
	Workers    int      `yaml:"workers,omitempty"`
}

// MetricsConfig controls the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
}

// DefaultConfig returns a config with sensible defaults for local use.
func DefaultConfig(projectID string) *Config {
	base := scan.DefaultConfig()
	return &Config{
		Version:   configVersion,
		ProjectID: projectID,
		Scan: ScanConfig{
			Exclude:    base.ExcludeGlobs,
			Extensions: base.Extensions,
		},
	}
}

// ToScanConfig converts the YAML-shaped config into pkg/scan.Config,
// falling back to scan.DefaultConfig for any field left empty.
func (c *Config) ToScanConfig() scan.Config {
	cfg := scan.DefaultConfig()
	if len(c.Scan.Exclude) > 0 {
		cfg.ExcludeGlobs = c.Scan.Exclude
	}
	if len(c.Scan.Extensions) > 0 {
		cfg.Extensions = c.Scan.Extensions
	}
	if c.Scan.Workers > 0 {
		cfg.Workers = c.Scan.Workers
	}
	return cfg
}

// LoadConfig loads configuration from configPath, or finds it by walking
// up from the current directory when configPath is empty.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("GEND_CONFIG_PATH")
	}
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from user config or discovery
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or run 'gend init --force' to recreate", configPath),
			err,
		)
	}

	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version '%s' is not supported (expected '%s')", cfg.Version, configVersion),
			"Run 'gend init --force' to regenerate the configuration file",
			nil,
		)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

// SaveConfig writes cfg to configPath as YAML, creating the containing
// directory if necessary.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug. Please report it with your configuration details",
			err,
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewPermissionError(
			"Cannot create configuration directory",
			fmt.Sprintf("Permission denied creating %s", dir),
			"Check directory permissions or run with appropriate privileges",
			err,
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and ensure sufficient disk space",
			err,
		)
	}

	return nil
}

// ConfigPath returns <dir>/.gen-d/project.yaml.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}

// ConfigDir returns <dir>/.gen-d.
func ConfigDir(dir string) string {
	return filepath.Join(dir, defaultConfigDir)
}

// findConfigFile walks up from the current directory looking for
// .gen-d/project.yaml.
func findConfigFile() (string, error) {
	if configPath := os.Getenv("GEND_CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
		return "", errors.NewConfigError(
			"Configuration file not found",
			fmt.Sprintf("GEND_CONFIG_PATH is set to '%s' but the file does not exist", configPath),
			"Fix the GEND_CONFIG_PATH environment variable or run 'gend init' to create a config",
			nil,
		)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}

	for {
		configPath := ConfigPath(dir)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.NewConfigError(
		"Configuration not found",
		"No .gen-d/project.yaml file found in current directory or any parent directory",
		"Run 'gend init' to create a new configuration",
		nil,
	)
}

// applyEnvOverrides applies environment variable overrides to cfg.
func (c *Config) applyEnvOverrides() {
	if id := os.Getenv("GEND_PROJECT_ID"); id != "" {
		c.ProjectID = id
	}
	if addr := os.Getenv("GEND_METRICS_ADDR"); addr != "" {
		c.Metrics.Enabled = true
		c.Metrics.Addr = addr
	}
}
