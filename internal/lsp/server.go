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
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"phpmnd-ls/internal/analyzer"
	"phpmnd-ls/internal/diagnostics"
	"phpmnd-ls/internal/document"
	"phpmnd-ls/internal/session"
)

// Sentinel errors returned by Run on shutdown.
var (
	// ErrExit signals a graceful shutdown after "shutdown" then "exit".
	ErrExit = errors.New("lsp exit")

	// ErrExitWithoutShutdown signals an "exit" without a preceding
	// "shutdown" request; the client skipped half the handshake.
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// =============================================================================
// SERVER
// =============================================================================

// ServerOptions configures the LSP server.
type ServerOptions struct {
	// Invoker runs the analyzer. Required.
	Invoker session.Invoker

	// Store receives per-document diagnostics. Required.
	Store *diagnostics.Store

	// AnalyzerOptions are the ignore lists passed on every run.
	AnalyzerOptions analyzer.Options

	// Enabled gates checking; a disabled server clears instead.
	Enabled bool

	// MatchExtension filters checkable file paths. Nil means all files.
	MatchExtension func(path string) bool

	// Version is reported in the initialize response.
	Version string
}

// Server handles stdio JSON-RPC for the analyzer.
//
// Description:
//
//	Single reader loop, mutex-guarded writer. The server owns the check
//	session so the one-shot invocation-failure notification can surface
//	as window/showMessage. Editor events turn into synchronous check
//	cycles: didOpen and didSave analyze, didChange only updates the
//	in-memory overlay, didClose forgets the document.
//
// Thread Safety:
//
//	Run is single-threaded; the send path and document maps are guarded
//	for the showMessage callback, which may fire inside a check.
type Server struct {
	in      *bufio.Reader
	out     *bufio.Writer
	sess    *session.Session
	match   func(string) bool
	version string

	sendMu sync.Mutex

	mu                sync.Mutex
	openDocs          map[string]string
	versions          map[string]int
	published         map[string]struct{}
	shutdownRequested bool

	baseCtx context.Context
}

// NewServer constructs an LSP server over the given transport.
//
// Inputs:
//
//	in - Protocol input (the editor's stdout, usually os.Stdin)
//	out - Protocol output (usually os.Stdout)
//	opts - Server configuration
//
// Outputs:
//
//	*Server - Ready to Run
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	s := &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		match:     opts.MatchExtension,
		version:   opts.Version,
		openDocs:  make(map[string]string),
		versions:  make(map[string]int),
		published: make(map[string]struct{}),
	}

	s.sess = session.NewSession(opts.Invoker, opts.Store,
		session.WithNotifier(session.NotifierFunc(s.showError)),
		session.WithAnalyzerOptions(opts.AnalyzerOptions),
		session.WithEnabled(opts.Enabled),
	)

	return s
}

// Session returns the check session the server coordinates.
func (s *Server) Session() *session.Session {
	return s.sess
}

// Run serves requests until the client disconnects or exits.
//
// Description:
//
//	Blocks reading framed messages. Returns nil on EOF, ErrExit on a
//	clean shutdown/exit pair, ErrExitWithoutShutdown when the client
//	exits without the shutdown request. Malformed payloads are logged
//	and skipped; a failed check cycle never stops the loop.
//
// Inputs:
//
//	ctx - Base context for all check cycles
//
// Outputs:
//
//	error - nil, ErrExit, ErrExitWithoutShutdown, or a transport error
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx

	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Warn("Dropping unparsable message", slog.String("error", err.Error()))
			continue
		}
		if msg.Method == "" {
			continue
		}

		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdownRequested = true
		s.mu.Unlock()
		return s.sendResponse(msg.ID, nil)
	case "exit":
		s.mu.Lock()
		clean := s.shutdownRequested
		s.mu.Unlock()
		if clean {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	default:
		// Unknown request gets an error; unknown notification is ignored.
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

// =============================================================================
// LIFECYCLE HANDLERS
// =============================================================================

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}

	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		s.sess.SetWorkspaceRoot(root)
	}

	slog.Debug("LSP initialize", slog.String("root", root))

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1, // full-text sync
				Save:      saveOptions{IncludeText: true},
			},
		},
		ServerInfo: serverInfo{
			Name:    "phpmnd-ls",
			Version: s.version,
		},
	}
	return s.sendResponse(msg.ID, result)
}

// =============================================================================
// DOCUMENT SYNC HANDLERS
// =============================================================================

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("Bad didOpen params", slog.String("error", err.Error()))
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}

	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()

	return s.checkAndPublish(uri)
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("Bad didChange params", slog.String("error", err.Error()))
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}

	s.mu.Lock()
	// Full-text sync: each change without a range replaces the overlay.
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			s.openDocs[uri] = change.Text
		}
	}
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()

	// Overlay update only; the analyzer reads from disk, so checking
	// unsaved text would map stale output. didSave triggers the check.
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("Bad didSave params", slog.String("error", err.Error()))
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}

	s.mu.Lock()
	if params.Text != nil {
		s.openDocs[uri] = *params.Text
	}
	s.mu.Unlock()

	return s.checkAndPublish(uri)
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		slog.Warn("Bad didClose params", slog.String("error", err.Error()))
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}

	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	_, had := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()

	s.sess.Forget(uri)

	if had {
		return s.sendPublish(uri, nil)
	}
	return nil
}

// =============================================================================
// CHECK + PUBLISH
// =============================================================================

// checkAndPublish runs one check cycle for an open document and
// publishes the replacement diagnostic set.
//
// A failed invocation publishes an empty set (the session already
// cleared the store); failure never propagates to the read loop.
func (s *Server) checkAndPublish(uri string) error {
	s.mu.Lock()
	text, open := s.openDocs[uri]
	s.mu.Unlock()
	if !open {
		return nil
	}

	path := uriToPath(uri)
	if path == "" {
		return nil
	}
	if s.match != nil && !s.match(path) {
		return nil
	}

	doc := document.NewFromText(text)
	diags, err := s.sess.Check(s.baseCtx, uri, doc, path)
	if err != nil {
		return s.sendPublish(uri, nil)
	}

	return s.sendPublish(uri, toLSPDiagnostics(diags))
}

// toLSPDiagnostics converts mapped diagnostics to wire form.
func toLSPDiagnostics(diags []diagnostics.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, lspDiagnostic{
			Range: lspRange{
				Start: position{Line: d.Line, Character: d.StartColumn},
				End:   position{Line: d.Line, Character: d.EndColumn},
			},
			Severity: d.Severity.LSPCode(),
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return out
}

// =============================================================================
// OUTGOING MESSAGES
// =============================================================================

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	})
}

// sendPublish publishes the full replacement set for a document. An
// empty set is an explicit empty array, never null, so clients clear.
func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}

	s.mu.Lock()
	if len(list) > 0 {
		s.published[uri] = struct{}{}
	} else {
		delete(s.published, uri)
	}
	s.mu.Unlock()

	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	})
}

// showError surfaces the session's one-shot invocation-failure message
// as a window/showMessage notification.
func (s *Server) showError(message string) {
	err := s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "window/showMessage",
		"params": showMessageParams{
			Type:    messageTypeError,
			Message: message,
		},
	})
	if err != nil {
		slog.Warn("Failed to send showMessage", slog.String("error", err.Error()))
	}
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
