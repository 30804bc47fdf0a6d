// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lsp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestFramingRoundTrip(t *testing.T) {
	payload := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)

	var buf bytes.Buffer
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatalf("writeMessage: %v", err)
	}

	got, err := readMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Round trip = %q, want %q", got, payload)
	}
}

func TestReadMessageHeaderHandling(t *testing.T) {
	t.Run("extra headers skipped", func(t *testing.T) {
		raw := "Content-Type: application/vscode-jsonrpc\r\nContent-Length: 2\r\n\r\n{}"
		got, err := readMessage(bufio.NewReader(strings.NewReader(raw)))
		if err != nil {
			t.Fatalf("readMessage: %v", err)
		}
		if string(got) != "{}" {
			t.Errorf("Payload = %q", got)
		}
	})

	t.Run("case-insensitive header name", func(t *testing.T) {
		raw := "content-length: 2\r\n\r\n{}"
		got, err := readMessage(bufio.NewReader(strings.NewReader(raw)))
		if err != nil {
			t.Fatalf("readMessage: %v", err)
		}
		if string(got) != "{}" {
			t.Errorf("Payload = %q", got)
		}
	})

	t.Run("missing content length", func(t *testing.T) {
		raw := "Content-Type: whatever\r\n\r\n{}"
		if _, err := readMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
			t.Error("Expected an error without Content-Length")
		}
	})

	t.Run("invalid content length", func(t *testing.T) {
		raw := "Content-Length: abc\r\n\r\n{}"
		if _, err := readMessage(bufio.NewReader(strings.NewReader(raw))); err == nil {
			t.Error("Expected an error for non-numeric Content-Length")
		}
	})
}

func TestURIConversion(t *testing.T) {
	t.Run("uri to path", func(t *testing.T) {
		if got := uriToPath("file:///srv/app/a.php"); got != "/srv/app/a.php" {
			t.Errorf("uriToPath = %q", got)
		}
	})

	t.Run("escaped characters", func(t *testing.T) {
		if got := uriToPath("file:///srv/app/with%20space.php"); got != "/srv/app/with space.php" {
			t.Errorf("uriToPath = %q", got)
		}
	})

	t.Run("non-file scheme rejected", func(t *testing.T) {
		if got := uriToPath("untitled:Untitled-1"); got != "" {
			t.Errorf("uriToPath = %q, want empty", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := uriToPath(""); got != "" {
			t.Errorf("uriToPath = %q, want empty", got)
		}
	})

	t.Run("path to uri round trip", func(t *testing.T) {
		uri := pathToURI("/srv/app/a.php")
		if uri != "file:///srv/app/a.php" {
			t.Errorf("pathToURI = %q", uri)
		}
		if got := uriToPath(uri); got != "/srv/app/a.php" {
			t.Errorf("Round trip = %q", got)
		}
	})
}
