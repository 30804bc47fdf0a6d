// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"time"
)

// DefaultExecutable is the analyzer command resolved via PATH when no
// explicit path is configured.
const DefaultExecutable = "phpmnd"

// Fixed flags passed on every invocation. The hint flag requests
// human-readable line-addressable output; the exit flag makes the
// analyzer exit non-zero when it finds violations, which is how findings
// are distinguished from a clean run without parsing ahead of time.
const (
	flagHint          = "--hint"
	flagNonZeroExit   = "--non-zero-exit-on-violation"
	flagIgnoreNumbers = "--ignore-numbers"
	flagIgnoreStrings = "--ignore-strings"
)

// =============================================================================
// REQUEST
// =============================================================================

// Options are the per-run analyzer options.
//
// Thread Safety: Treat as immutable after creation.
type Options struct {
	// IgnoreNumbers are numeric literals the analyzer should not report,
	// passed comma-joined when non-empty.
	IgnoreNumbers []string

	// IgnoreStrings are function/context names the analyzer should skip,
	// passed comma-joined when non-empty.
	IgnoreStrings []string
}

// AnalysisRequest describes one analyzer invocation.
//
// Constructed fresh per invocation and never mutated afterwards.
type AnalysisRequest struct {
	// FilePath is the absolute path of the file to analyze.
	FilePath string

	// WorkingDir is the workspace root to run the analyzer in. Empty
	// means the process default working directory.
	WorkingDir string

	// Options are the per-run options.
	Options Options
}

// =============================================================================
// RESULT
// =============================================================================

// RawResult is the captured output of one analyzer run.
//
// The exit status is advisory only: the analyzer exits non-zero when it
// finds violations, so Succeeded=false with output is a normal outcome.
// An actual invocation failure is reported as an error by Run, never as
// a RawResult.
//
// Thread Safety: Immutable after creation by the runner.
type RawResult struct {
	// CombinedOutput is the captured stdout immediately followed by the
	// captured stderr. Downstream parsing never distinguishes streams.
	CombinedOutput string

	// Succeeded is true when the process exited zero.
	Succeeded bool

	// ExitCode is the process exit status (0 on success).
	ExitCode int

	// Duration is how long the run took.
	Duration time.Duration
}

// HasOutput reports whether the run captured any text at all.
func (r *RawResult) HasOutput() bool {
	return len(r.CombinedOutput) > 0
}
