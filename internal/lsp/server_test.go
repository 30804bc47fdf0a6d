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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"phpmnd-ls/internal/analyzer"
	"phpmnd-ls/internal/diagnostics"
)

// stubInvoker plays the analyzer role without a subprocess.
type stubInvoker struct {
	output string
	err    error
	calls  int
}

func (s *stubInvoker) Run(_ context.Context, _ analyzer.AnalysisRequest) (*analyzer.RawResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &analyzer.RawResult{CombinedOutput: s.output, ExitCode: 1}, nil
}

// frame encodes one client message with Content-Length framing.
func frame(t *testing.T, msg any) []byte {
	t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return []byte(fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(payload), payload))
}

// clientScript builds a framed byte stream from a message sequence.
func clientScript(t *testing.T, msgs ...any) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		buf.Write(frame(t, m))
	}
	return &buf
}

// readAllMessages decodes every framed server message from the output.
func readAllMessages(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("readMessage: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

// publishesFor extracts publishDiagnostics params sent for a URI.
func publishesFor(t *testing.T, msgs []rpcMessage, uri string) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, m := range msgs {
		if m.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(m.Params, &params); err != nil {
			t.Fatalf("unmarshal params: %v", err)
		}
		if params.URI == uri {
			out = append(out, params)
		}
	}
	return out
}

func notification(method string, params any) map[string]any {
	return map[string]any{"jsonrpc": "2.0", "method": method, "params": params}
}

func request(id int, method string, params any) map[string]any {
	return map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params}
}

func newTestServer(invoker *stubInvoker, in io.Reader, out io.Writer) *Server {
	return NewServer(in, out, ServerOptions{
		Invoker: invoker,
		Store:   diagnostics.NewStore(),
		Enabled: true,
		Version: "test",
	})
}

func TestServerLifecycle(t *testing.T) {
	uri := "file:///tmp/a.php"
	invoker := &stubInvoker{output: "/tmp/a.php:1: Magic number: 42\n"}

	in := clientScript(t,
		request(1, "initialize", initializeParams{RootURI: "file:///tmp"}),
		notification("initialized", nil),
		notification("textDocument/didOpen", didOpenTextDocumentParams{
			TextDocument: textDocumentItem{URI: uri, LanguageID: "php", Version: 1, Text: "$x = 42;"},
		}),
		notification("textDocument/didClose", didCloseTextDocumentParams{
			TextDocument: textDocumentIdentifier{URI: uri},
		}),
		request(2, "shutdown", nil),
		notification("exit", nil),
	)

	var out bytes.Buffer
	server := newTestServer(invoker, in, &out)

	err := server.Run(context.Background())
	if !errors.Is(err, ErrExit) {
		t.Fatalf("Run = %v, want ErrExit", err)
	}

	msgs := readAllMessages(t, &out)

	// Initialize response advertises openClose + full sync + save text.
	var init initializeResult
	if len(msgs) == 0 || msgs[0].Result == nil {
		t.Fatal("Expected initialize response first")
	}
	if err := json.Unmarshal(msgs[0].Result, &init); err != nil {
		t.Fatalf("unmarshal initialize result: %v", err)
	}
	sync := init.Capabilities.TextDocumentSync
	if !sync.OpenClose || sync.Change != 1 || !sync.Save.IncludeText {
		t.Errorf("Capabilities = %+v", sync)
	}

	publishes := publishesFor(t, msgs, uri)
	if len(publishes) != 2 {
		t.Fatalf("Expected 2 publishes (didOpen + didClose clear), got %d", len(publishes))
	}

	// didOpen publish carries the mapped finding.
	first := publishes[0]
	if len(first.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(first.Diagnostics))
	}
	d := first.Diagnostics[0]
	if d.Range.Start.Line != 0 || d.Range.Start.Character != 5 || d.Range.End.Character != 7 {
		t.Errorf("Range = %+v, want line 0 chars [5,7)", d.Range)
	}
	if d.Source != "phpmnd" || d.Severity != 2 {
		t.Errorf("Source/Severity = %q/%d", d.Source, d.Severity)
	}

	// didClose publish clears with an explicit empty array.
	if publishes[1].Diagnostics == nil || len(publishes[1].Diagnostics) != 0 {
		t.Errorf("Close publish = %+v, want explicit empty", publishes[1].Diagnostics)
	}

	if invoker.calls != 1 {
		t.Errorf("Invoker calls = %d, want 1 (didOpen only)", invoker.calls)
	}
}

func TestServerDidChangeDoesNotCheck(t *testing.T) {
	uri := "file:///tmp/a.php"
	invoker := &stubInvoker{output: ""}

	newText := "$x = 1;"
	in := clientScript(t,
		notification("textDocument/didOpen", didOpenTextDocumentParams{
			TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "$x = 0;"},
		}),
		notification("textDocument/didChange", didChangeTextDocumentParams{
			TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
			ContentChanges: []textDocumentContentChangeEvent{{Text: newText}},
		}),
	)

	var out bytes.Buffer
	server := newTestServer(invoker, in, &out)

	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if invoker.calls != 1 {
		t.Errorf("Invoker calls = %d, want 1 (didChange is overlay-only)", invoker.calls)
	}

	server.mu.Lock()
	overlay := server.openDocs[uri]
	server.mu.Unlock()
	if overlay != newText {
		t.Errorf("Overlay = %q, want %q", overlay, newText)
	}
}

func TestServerSaveUsesOverlayForMapping(t *testing.T) {
	uri := "file:///tmp/a.php"
	// Analyzer output points at line 5; the overlay only has 2 lines,
	// so the finding is dropped and the publish is empty.
	invoker := &stubInvoker{output: "/tmp/a.php:5: Magic number: 42\n"}

	saved := "$a = 1;\n$b = 2;"
	in := clientScript(t,
		notification("textDocument/didOpen", didOpenTextDocumentParams{
			TextDocument: textDocumentItem{URI: uri, Version: 1, Text: saved},
		}),
		notification("textDocument/didSave", didSaveTextDocumentParams{
			TextDocument: textDocumentIdentifier{URI: uri},
			Text:         &saved,
		}),
	)

	var out bytes.Buffer
	server := newTestServer(invoker, in, &out)

	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	publishes := publishesFor(t, readAllMessages(t, &out), uri)
	if len(publishes) != 2 {
		t.Fatalf("Expected 2 publishes, got %d", len(publishes))
	}
	for i, p := range publishes {
		if len(p.Diagnostics) != 0 {
			t.Errorf("Publish %d = %+v, want empty (out-of-range dropped)", i, p.Diagnostics)
		}
	}
}

func TestServerInvocationFailureNotifiesOnce(t *testing.T) {
	uri := "file:///tmp/a.php"
	invoker := &stubInvoker{err: analyzer.NewAnalyzerError("phpmnd", analyzer.ErrAnalyzerNotInstalled)}

	open := func(v int) any {
		return notification("textDocument/didOpen", didOpenTextDocumentParams{
			TextDocument: textDocumentItem{URI: uri, Version: v, Text: "$x = 1;"},
		})
	}
	save := notification("textDocument/didSave", didSaveTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})

	in := clientScript(t, open(1), save, save)

	var out bytes.Buffer
	server := newTestServer(invoker, in, &out)

	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := readAllMessages(t, &out)

	shown := 0
	for _, m := range msgs {
		if m.Method == "window/showMessage" {
			shown++
			var params showMessageParams
			if err := json.Unmarshal(m.Params, &params); err != nil {
				t.Fatalf("unmarshal showMessage: %v", err)
			}
			if params.Type != messageTypeError {
				t.Errorf("showMessage type = %d, want %d", params.Type, messageTypeError)
			}
		}
	}
	if shown != 1 {
		t.Errorf("showMessage count = %d, want exactly 1 across repeated failures", shown)
	}

	// Every failed check publishes an explicit empty set.
	for i, p := range publishesFor(t, msgs, uri) {
		if len(p.Diagnostics) != 0 {
			t.Errorf("Publish %d should be empty on failure, got %+v", i, p.Diagnostics)
		}
	}

	if invoker.calls != 3 {
		t.Errorf("Invoker calls = %d, want 3", invoker.calls)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	in := clientScript(t,
		request(7, "textDocument/hover", map[string]any{}),
		notification("workspace/didChangeWatchedFiles", nil),
	)

	var out bytes.Buffer
	server := newTestServer(&stubInvoker{}, in, &out)

	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := readAllMessages(t, &out)
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 response (unknown notification ignored), got %d", len(msgs))
	}
	if msgs[0].Error == nil || msgs[0].Error.Code != codeMethodNotFound {
		t.Errorf("Response = %+v, want method-not-found error", msgs[0])
	}
}

func TestServerExitWithoutShutdown(t *testing.T) {
	in := clientScript(t, notification("exit", nil))

	var out bytes.Buffer
	server := newTestServer(&stubInvoker{}, in, &out)

	if err := server.Run(context.Background()); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Errorf("Run = %v, want ErrExitWithoutShutdown", err)
	}
}
