// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hint

import (
	"regexp"
	"strconv"
	"strings"

	"phpmnd-ls/internal/diagnostics"
)

// SourceTag identifies the analyzer on every emitted diagnostic.
const SourceTag = "phpmnd"

// LineSource is the document capability the parser needs: a line count
// and per-line text. *document.Document implements it; tests and editor
// overlays provide their own.
type LineSource interface {
	LineCount() int
	LineText(i int) string
}

var (
	// findingRe matches one finding line of hint output. The greedy
	// left side makes the captured digits the run after the FINAL colon
	// that is followed by an optional colon and whitespace, so Windows
	// drive letters and colons inside the path never shift the match.
	findingRe = regexp.MustCompile(`^(.*):(\d+):?\s+(.*)$`)

	// magicNumberRe extracts the reported numeric token from a message:
	// digits with at most one decimal point.
	magicNumberRe = regexp.MustCompile(`Magic number: (\d+(?:\.\d+)?)`)
)

// Parse maps raw hint-mode analyzer output onto document positions.
//
// Description:
//
//	Pure function: deterministic, no I/O, never returns an error. Each
//	output line is attempted independently; lines that do not match the
//	finding shape produce nothing. Line numbers in the output are
//	1-based and converted to 0-based; numbers outside the document's
//	current bounds are dropped, never clamped, so stale output against
//	an edited document degrades to fewer diagnostics instead of wrong
//	ranges.
//
//	When the message carries a "Magic number: <token>" and the token
//	occurs verbatim in the target line, the range brackets exactly that
//	first occurrence. Otherwise the range spans the full line. Matching
//	is plain substring search, not numeric equivalence: "1.0" does not
//	match a line containing only "1".
//
// Inputs:
//
//	raw - Combined stdout+stderr text of one analyzer run
//	doc - Line access to the target document
//
// Outputs:
//
//	[]diagnostics.Diagnostic - One per matched line, in input order,
//	severity Warning, source SourceTag. Never nil.
func Parse(raw string, doc LineSource) []diagnostics.Diagnostic {
	diags := make([]diagnostics.Diagnostic, 0)
	if doc == nil {
		return diags
	}

	for _, outLine := range strings.Split(raw, "\n") {
		outLine = strings.TrimSuffix(outLine, "\r")

		m := findingRe.FindStringSubmatch(outLine)
		if m == nil {
			continue
		}

		n, err := strconv.Atoi(m[2])
		if err != nil {
			// Digit run too large for an int; treat as unparsable.
			continue
		}
		line := n - 1
		if line < 0 || line >= doc.LineCount() {
			continue
		}

		message := m[3]
		lineText := doc.LineText(line)

		start, end := 0, len(lineText)
		if tok := magicNumberRe.FindStringSubmatch(message); tok != nil {
			if idx := strings.Index(lineText, tok[1]); idx >= 0 {
				start, end = idx, idx+len(tok[1])
			}
		}

		diags = append(diags, diagnostics.Diagnostic{
			Line:        line,
			StartColumn: start,
			EndColumn:   end,
			Message:     message,
			Severity:    diagnostics.SeverityWarning,
			Source:      SourceTag,
		})
	}

	return diags
}
