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
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes the magic-number analyzer on single files.
//
// Description:
//
//	Builds the analyzer command line from an AnalysisRequest, runs it to
//	completion, and classifies the outcome. The analyzer overloads its
//	exit status to mean "violations found", so classification is driven
//	by captured output, not by the exit code.
//
// Thread Safety: Safe for concurrent use. Concurrent runs are
// independent subprocesses; the runner holds no per-run state.
type Runner struct {
	executable string
	workingDir string
}

// Option configures the Runner.
type Option func(*Runner)

// WithExecutable sets the analyzer executable path or command name.
func WithExecutable(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.executable = path
		}
	}
}

// WithWorkingDir sets a default working directory used when a request
// does not carry a workspace root.
func WithWorkingDir(dir string) Option {
	return func(r *Runner) {
		r.workingDir = dir
	}
}

// NewRunner creates a runner for the analyzer executable.
//
// Inputs:
//
//	opts - Optional configuration options
//
// Outputs:
//
//	*Runner - The configured runner
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		executable: DefaultExecutable,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Executable returns the configured analyzer command.
func (r *Runner) Executable() string {
	return r.executable
}

// Available probes PATH for the analyzer executable.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.executable)
	return err == nil
}

// commandArgs builds the argument list for one invocation.
//
// Order is fixed: target file, hint flag, non-zero-exit flag, then the
// ignore flags only when their lists are non-empty. Nothing else is ever
// passed; omitted options are omitted, not passed empty.
func commandArgs(req AnalysisRequest) []string {
	args := []string{req.FilePath, flagHint, flagNonZeroExit}

	if len(req.Options.IgnoreNumbers) > 0 {
		args = append(args, flagIgnoreNumbers+"="+strings.Join(req.Options.IgnoreNumbers, ","))
	}
	if len(req.Options.IgnoreStrings) > 0 {
		args = append(args, flagIgnoreStrings+"="+strings.Join(req.Options.IgnoreStrings, ","))
	}

	return args
}

// Run executes the analyzer once and classifies the outcome.
//
// Description:
//
//	Runs the analyzer synchronously, capturing stdout and stderr into
//	separate buffers and concatenating them stdout-first. Exit status is
//	classified as follows:
//	  - exit zero: successful run (ordinarily no findings);
//	  - non-zero exit with any captured output: successful run that
//	    found violations, handled identically downstream;
//	  - cannot start, or non-zero exit with no output at all: invocation
//	    failure, returned as an error wrapping ErrAnalyzerFailed or
//	    ErrAnalyzerNotInstalled.
//
//	No timeout is imposed here; the context is the only bound. A context
//	cancellation surfaces as the context's own error.
//
// Inputs:
//
//	ctx - Context for cancellation
//	req - The invocation request
//
// Outputs:
//
//	*RawResult - Captured output and advisory exit status
//	error - Non-nil only on invocation failure
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Run(ctx context.Context, req AnalysisRequest) (*RawResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if req.FilePath == "" {
		return nil, fmt.Errorf("%w: file path must not be empty", ErrInvalidInput)
	}

	ctx, span := startRunSpan(ctx, r.executable, req.FilePath)
	defer span.End()
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.executable, commandArgs(req)...)

	// Working directory: workspace root when known, process default otherwise.
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	} else if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	if ctx.Err() != nil {
		recordRunMetrics(ctx, r.executable, duration, false)
		return nil, fmt.Errorf("analyzer run: %w", ctx.Err())
	}

	// The analyzer exits non-zero when it finds violations. Only the
	// total absence of output marks an actual failure.
	if err != nil && stdout.Len() == 0 && stderr.Len() == 0 {
		recordRunMetrics(ctx, r.executable, duration, false)
		sentinel := ErrAnalyzerFailed
		if errors.Is(err, exec.ErrNotFound) {
			sentinel = ErrAnalyzerNotInstalled
		}
		slog.Debug("Analyzer invocation failed",
			slog.String("analyzer", r.executable),
			slog.String("file", req.FilePath),
			slog.String("error", err.Error()),
		)
		return nil, NewAnalyzerError(r.executable, sentinel)
	}

	result := &RawResult{
		CombinedOutput: stdout.String() + stderr.String(),
		Succeeded:      err == nil,
		ExitCode:       exitCode(err),
		Duration:       duration,
	}

	setRunSpanResult(span, result.ExitCode, len(result.CombinedOutput))
	recordRunMetrics(ctx, r.executable, duration, true)

	slog.Debug("Analyzer run completed",
		slog.String("file", req.FilePath),
		slog.String("analyzer", r.executable),
		slog.Int("exit_code", result.ExitCode),
		slog.Int("output_bytes", len(result.CombinedOutput)),
		slog.Duration("duration", duration),
	)

	return result, nil
}

// exitCode extracts the process exit status from a Run error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
