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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/gen-d/internal/errors"
	"github.com/kraklabs/gen-d/internal/ui"
)

type initFlags struct {
	force          bool
	nonInteractive bool
	projectID      string
}

// runInit executes 'gend init': writes .gen-d/project.yaml in the current
// directory, prompting for a project ID unless -y or --project-id is given.
func runInit(args []string, globals GlobalFlags) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"This is unexpected. Please report this issue if it persists",
			err,
		), globals.JSON)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !flags.force {
		errors.FatalError(errors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s already exists in this directory", configPath),
			"Use 'gend init --force' to overwrite the existing configuration",
		), globals.JSON)
	}

	pid := flags.projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := DefaultConfig(pid)

	if !flags.nonInteractive && !globals.Quiet {
		reader := bufio.NewReader(os.Stdin)
		ui.Header("gen-d project configuration")
		fmt.Println()
		cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)
		fmt.Println()
	}

	if err := os.MkdirAll(ConfigDir(cwd), 0750); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot create .gen-d directory",
			fmt.Sprintf("Permission denied creating directory: %s", ConfigDir(cwd)),
			"Check directory permissions or run with appropriate privileges",
			err,
		), globals.JSON)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	ui.Successf("Created %s", configPath)
	ui.SubHeader("Next steps:")
	fmt.Printf("  1. Run '%s' to scan the project\n", ui.Cyan.Sprint("gend scan"))
	fmt.Printf("  2. Run '%s' to see the drift summary\n", ui.Cyan.Sprint("gend status"))
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	yes := fs.BoolP("yes", "y", false, "Non-interactive mode, use all defaults")
	projectID := fs.String("project-id", "", "Project identifier (default: directory name)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gend init [options]

Create the .gen-d/project.yaml configuration file.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	return initFlags{force: *force, nonInteractive: *yes, projectID: *projectID}
}

func prompt(reader *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
