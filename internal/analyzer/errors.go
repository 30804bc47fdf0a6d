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
	"errors"
	"fmt"
)

// Sentinel errors for analyzer invocation.
var (
	// ErrAnalyzerNotInstalled indicates the analyzer executable was not
	// found in PATH.
	ErrAnalyzerNotInstalled = errors.New("analyzer not installed")

	// ErrAnalyzerFailed indicates the analyzer could not run or exited
	// without producing any output. A non-zero exit WITH output is not a
	// failure; it is how the analyzer reports findings.
	ErrAnalyzerFailed = errors.New("analyzer execution failed")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// AnalyzerError provides context about an invocation failure.
type AnalyzerError struct {
	// Executable is the analyzer command that failed.
	Executable string

	// Err is the underlying sentinel error.
	Err error

	// Output is any captured stderr text, for debugging.
	Output string
}

// Error implements the error interface.
func (e *AnalyzerError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", e.Executable, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Executable, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// NewAnalyzerError creates an AnalyzerError.
func NewAnalyzerError(executable string, err error) *AnalyzerError {
	return &AnalyzerError{
		Executable: executable,
		Err:        err,
	}
}

// WithOutput attaches captured stderr to the error.
func (e *AnalyzerError) WithOutput(output string) *AnalyzerError {
	e.Output = output
	return e
}
