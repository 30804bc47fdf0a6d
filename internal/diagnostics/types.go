// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	// SeverityInfo represents informational findings.
	SeverityInfo Severity = iota

	// SeverityWarning represents findings that should be surfaced but are
	// not errors. The magic-number analyzer only ever produces warnings.
	SeverityWarning

	// SeverityError represents findings that indicate broken code.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// LSPCode returns the numeric severity used by the Language Server Protocol.
//
// LSP severities are 1-based: 1=Error, 2=Warning, 3=Information, 4=Hint.
func (s Severity) LSPCode() int {
	switch s {
	case SeverityError:
		return 1
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 2
	}
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// Diagnostic is one finding anchored to a position in a document.
//
// Line and columns are 0-based. EndColumn is exclusive and always at least
// StartColumn. A full-line diagnostic spans column 0 to the line's length.
//
// Thread Safety: Immutable value; safe to copy and share.
type Diagnostic struct {
	// Line is the 0-based line index into the target document.
	Line int `json:"line"`

	// StartColumn is the 0-based column where the finding begins.
	StartColumn int `json:"start_column"`

	// EndColumn is the exclusive 0-based column where the finding ends.
	EndColumn int `json:"end_column"`

	// Message is the human-readable finding text from the analyzer.
	Message string `json:"message"`

	// Severity classifies the finding.
	Severity Severity `json:"severity"`

	// Source identifies the analyzer that produced the finding.
	Source string `json:"source"`
}
