// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package document

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromText(t *testing.T) {
	t.Run("plain lines", func(t *testing.T) {
		doc := NewFromText("one\ntwo\nthree")
		if doc.LineCount() != 3 {
			t.Fatalf("LineCount = %d, want 3", doc.LineCount())
		}
		if doc.LineText(1) != "two" {
			t.Errorf("LineText(1) = %q, want two", doc.LineText(1))
		}
	})

	t.Run("trailing newline yields final empty line", func(t *testing.T) {
		doc := NewFromText("one\ntwo\n")
		if doc.LineCount() != 3 {
			t.Errorf("LineCount = %d, want 3", doc.LineCount())
		}
		if doc.LineText(2) != "" {
			t.Errorf("LineText(2) = %q, want empty", doc.LineText(2))
		}
	})

	t.Run("crlf stripped from line text", func(t *testing.T) {
		doc := NewFromText("one\r\ntwo\r\nthree")
		if doc.LineCount() != 3 {
			t.Fatalf("LineCount = %d, want 3", doc.LineCount())
		}
		for i, want := range []string{"one", "two", "three"} {
			if got := doc.LineText(i); got != want {
				t.Errorf("LineText(%d) = %q, want %q", i, got, want)
			}
		}
	})

	t.Run("empty text is one empty line", func(t *testing.T) {
		doc := NewFromText("")
		if doc.LineCount() != 1 {
			t.Errorf("LineCount = %d, want 1", doc.LineCount())
		}
	})
}

func TestLineTextOutOfRange(t *testing.T) {
	doc := NewFromText("only")
	if got := doc.LineText(-1); got != "" {
		t.Errorf("LineText(-1) = %q, want empty", got)
	}
	if got := doc.LineText(1); got != "" {
		t.Errorf("LineText(1) = %q, want empty", got)
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.php")
	content := "<?php\n$x = 42;\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	doc, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if doc.LineCount() != 3 {
		t.Errorf("LineCount = %d, want 3", doc.LineCount())
	}
	if doc.LineText(1) != "$x = 42;" {
		t.Errorf("LineText(1) = %q", doc.LineText(1))
	}

	if _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.php")); err == nil {
		t.Error("Expected error for missing file")
	}
}
