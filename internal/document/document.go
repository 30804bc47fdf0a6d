// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document provides a line-indexed view over source text.
//
// A Document is built from editor overlay text, a file on disk, or a raw
// string. It exposes the two capabilities range mapping needs: LineCount
// and LineText. Line terminators are not part of line text, matching how
// editors report line content.
package document

import (
	"os"
	"strings"
)

// Document is an immutable line-indexed snapshot of source text.
//
// Thread Safety: Immutable after creation; safe for concurrent use.
type Document struct {
	lines []string
}

// NewFromText builds a document from raw text.
//
// Text is split on line feeds; a trailing carriage return on a line is
// stripped so CRLF and LF content index identically. Text ending in a
// newline yields a final empty line, matching editor line counting.
func NewFromText(text string) *Document {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &Document{lines: lines}
}

// NewFromFile builds a document from a file on disk.
func NewFromFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFromText(string(data)), nil
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// LineText returns the text of the 0-based line, without its terminator.
//
// Out-of-range indices return the empty string rather than panicking;
// callers validate bounds before trusting the result.
func (d *Document) LineText(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}
