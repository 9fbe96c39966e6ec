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

// Package ui renders gen-d's terminal output: colorized headers and
// status lines when writing to a real terminal, plain text otherwise.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color instances used directly for inline emphasis, e.g.
// ui.Cyan.Sprint("gend scan").
var (
	Cyan   = color.New(color.FgCyan)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed, color.Bold)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// InitColors enables or disables color output globally. noColor, the
// NO_COLOR environment variable, and a non-TTY stdout all force plain
// text; otherwise color is left to fatih/color's own terminal detection.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// Header prints a bold section title on its own line.
func Header(title string) {
	_, _ = Bold.Println(title)
}

// SubHeader prints a secondary, dimmer section title.
func SubHeader(title string) {
	_, _ = Dim.Println(title)
}

// Label renders a field name for a "Label: value" line.
func Label(text string) string {
	return Bold.Sprint(text)
}

// CountText renders an integer count, bold, for inline use in a summary line.
func CountText(n int) string {
	return Bold.Sprint(n)
}

// DimText renders text in the muted/secondary style.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// Info prints an informational line to stdout.
func Info(msg string) {
	fmt.Println(msg)
}

// Infof prints a formatted informational line to stdout.
func Infof(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Success prints a green success message to stdout.
func Success(msg string) {
	_, _ = Green.Println(msg)
}

// Successf prints a formatted green success message to stdout.
func Successf(format string, args ...interface{}) {
	_, _ = Green.Printf(format+"\n", args...)
}

// Warning prints a yellow warning message to stderr.
func Warning(msg string) {
	_, _ = Yellow.Fprintln(os.Stderr, msg)
}

// Warningf prints a formatted yellow warning message to stderr.
func Warningf(format string, args ...interface{}) {
	_, _ = Yellow.Fprintf(os.Stderr, format+"\n", args...)
}

// Error prints a red error message to stderr. Reserved for non-fatal
// errors; a fatal condition goes through errors.FatalError instead, which
// also controls the process exit code.
func Error(msg string) {
	_, _ = Red.Fprintln(os.Stderr, msg)
}
