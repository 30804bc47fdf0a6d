// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"phpmnd-ls/internal/diagnostics"
)

func sampleReport() *Report {
	return &Report{
		Files: []FileReport{
			{
				File: "/srv/app/a.php",
				Diagnostics: []diagnostics.Diagnostic{
					{
						Line:        4,
						StartColumn: 5,
						EndColumn:   7,
						Message:     "Magic number: 42",
						Severity:    diagnostics.SeverityWarning,
						Source:      "phpmnd",
					},
				},
				Count: 1,
			},
			{File: "/srv/app/b.php", Diagnostics: []diagnostics.Diagnostic{}, Count: 0},
		},
		FilesChecked:  2,
		TotalFindings: 1,
		DurationMs:    12,
	}
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, true)

	if err := p.Print(sampleReport()); err != nil {
		t.Fatalf("Print: %v", err)
	}

	out := buf.String()
	// Human output is 1-based.
	if !strings.Contains(out, "/srv/app/a.php:5:6") {
		t.Errorf("Missing 1-based location, got:\n%s", out)
	}
	if !strings.Contains(out, "warning: Magic number: 42") {
		t.Errorf("Missing severity and message, got:\n%s", out)
	}
	if !strings.Contains(out, "1 finding in 2 files (12ms)") {
		t.Errorf("Missing summary, got:\n%s", out)
	}
	// Buffer writer + noColor: no escape sequences.
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Output should be free of ANSI escapes:\n%q", out)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, false)

	if err := p.Print(sampleReport()); err != nil {
		t.Fatalf("Print: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if decoded.TotalFindings != 1 || decoded.FilesChecked != 2 {
		t.Errorf("Decoded = %+v", decoded)
	}
	if len(decoded.Files) != 2 || decoded.Files[0].Count != 1 {
		t.Errorf("Files = %+v", decoded.Files)
	}
	// The JSON model stays 0-based like the diagnostics themselves.
	if decoded.Files[0].Diagnostics[0].Line != 4 {
		t.Errorf("Line = %d, want 4", decoded.Files[0].Diagnostics[0].Line)
	}
}

func TestPrintFileError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, true)

	fr := FileReport{File: "/srv/app/x.php", Error: "phpmnd: analyzer execution failed"}
	if err := p.PrintFile(&fr); err != nil {
		t.Fatalf("PrintFile: %v", err)
	}

	if !strings.Contains(buf.String(), "analyzer execution failed") {
		t.Errorf("Missing error text: %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("json should parse to FormatJSON")
	}
	if ParseFormat("text") != FormatText {
		t.Error("text should parse to FormatText")
	}
	if ParseFormat("bogus") != FormatText {
		t.Error("unknown formats fall back to text")
	}
}
