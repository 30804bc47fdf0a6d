// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package output renders check results for the CLI and watch mode.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"phpmnd-ls/internal/diagnostics"
)

// Format selects the output rendering.
type Format string

const (
	// FormatText is the human-readable file:line:col rendering.
	FormatText Format = "text"

	// FormatJSON is the stable machine-readable rendering.
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	if s == string(FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// FileReport is the result of checking one file.
type FileReport struct {
	File        string                   `json:"file"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
	Count       int                      `json:"count"`

	// Error is set when the file could not be checked at all.
	Error string `json:"error,omitempty"`
}

// Report is the result of one check invocation.
type Report struct {
	Files         []FileReport `json:"files"`
	FilesChecked  int          `json:"files_checked"`
	TotalFindings int          `json:"total_findings"`
	DurationMs    int64        `json:"duration_ms"`
}

// Severity and location colors for text output.
var (
	warnColor     = color.New(color.FgYellow, color.Bold)
	errColor      = color.New(color.FgRed, color.Bold)
	locationColor = color.New(color.FgCyan)
)

// =============================================================================
// PRINTER
// =============================================================================

// Printer renders reports to a writer.
//
// Thread Safety: Not safe for concurrent use; callers serialize.
type Printer struct {
	w       io.Writer
	format  Format
	noColor bool
}

// NewPrinter creates a printer.
//
// Description:
//
//	Color is used only for text output when the writer is a terminal,
//	NO_COLOR is unset, and noColor is false.
//
// Inputs:
//
//	w - Destination writer
//	format - FormatText or FormatJSON
//	noColor - Force-disable color
func NewPrinter(w io.Writer, format Format, noColor bool) *Printer {
	return &Printer{
		w:       w,
		format:  format,
		noColor: noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(w),
	}
}

// Print renders one report.
func (p *Printer) Print(report *Report) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return p.printText(report)
}

// PrintFile renders one file's results, for watch mode's rolling output.
func (p *Printer) PrintFile(fr *FileReport) error {
	if p.format == FormatJSON {
		return json.NewEncoder(p.w).Encode(fr)
	}
	return p.printFileText(fr)
}

func (p *Printer) printText(report *Report) error {
	for i := range report.Files {
		if err := p.printFileText(&report.Files[i]); err != nil {
			return err
		}
	}

	noun := "findings"
	if report.TotalFindings == 1 {
		noun = "finding"
	}
	_, err := fmt.Fprintf(p.w, "%d %s in %d files (%dms)\n",
		report.TotalFindings, noun, report.FilesChecked, report.DurationMs)
	return err
}

func (p *Printer) printFileText(fr *FileReport) error {
	if fr.Error != "" {
		if _, err := fmt.Fprintf(p.w, "%s: %s\n", fr.File, p.paint(errColor, fr.Error)); err != nil {
			return err
		}
		return nil
	}

	for _, d := range fr.Diagnostics {
		// 1-based line:col for humans; the model is 0-based throughout.
		loc := fmt.Sprintf("%s:%d:%d", fr.File, d.Line+1, d.StartColumn+1)
		_, err := fmt.Fprintf(p.w, "%s: %s %s\n",
			p.paint(locationColor, loc),
			p.paint(severityColor(d.Severity), d.Severity.String()+":"),
			d.Message,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// paint applies c unless color is disabled.
func (p *Printer) paint(c *color.Color, s string) string {
	if p.noColor {
		return s
	}
	return c.Sprint(s)
}

func severityColor(s diagnostics.Severity) *color.Color {
	if s == diagnostics.SeverityError {
		return errColor
	}
	return warnColor
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
