// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressConfig controls whether and how a progress bar is rendered for
// a long-running command.
type ProgressConfig struct {
	Enabled bool
}

// NewProgressConfig derives progress behavior from the global flags: the
// bar is enabled unless --quiet or --json is given. Whether stderr is a
// terminal is not checked.
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	return ProgressConfig{Enabled: !globals.Quiet && !globals.JSON}
}

// NewProgressBar returns a progress bar for total items described by
// description, or nil if progress reporting is disabled.
func NewProgressBar(cfg ProgressConfig, total int, description string) *progressbar.ProgressBar {
	if !cfg.Enabled || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65),
	)
}

// progressBarHandle lazily creates its underlying bar on the first Set
// call, since the orchestrator's ProgressFunc doesn't know the file total
// until the first file finishes.
type progressBarHandle struct {
	cfg         ProgressConfig
	total       int
	description string
	bar         *progressbar.ProgressBar
}

func newProgressBarHandle(cfg ProgressConfig, total int, description string) *progressBarHandle {
	return &progressBarHandle{cfg: cfg, total: total, description: description}
}

func (h *progressBarHandle) set(current int) {
	if h.bar == nil {
		h.bar = NewProgressBar(h.cfg, h.total, h.description)
		if h.bar == nil {
			return
		}
	}
	_ = h.bar.Set(current)
}

func (h *progressBarHandle) finish() {
	if h.bar != nil {
		_ = h.bar.Finish()
	}
}
