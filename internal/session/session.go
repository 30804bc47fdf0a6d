// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"phpmnd-ls/internal/analyzer"
	"phpmnd-ls/internal/diagnostics"
	"phpmnd-ls/internal/hint"
)

// ErrInvalidInput indicates invalid input parameters.
var ErrInvalidInput = errors.New("invalid input")

// Invoker runs the analyzer. *analyzer.Runner implements it; tests
// substitute stubs.
type Invoker interface {
	Run(ctx context.Context, req analyzer.AnalysisRequest) (*analyzer.RawResult, error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session coordinates check cycles and owns the per-document diagnostics.
//
// Description:
//
//	One Session lives for the process lifetime. It turns a trigger
//	(editor event, CLI argument, watch event) into a check cycle:
//	invoke the analyzer, map its output against the document, replace
//	that document's diagnostics. On invocation failure it clears the
//	document's diagnostics instead, so stale findings never outlive the
//	run that produced them, and announces the failure through the
//	Notifier exactly once per session.
//
// Thread Safety:
//
//	Safe for concurrent use. Checks for different documents are fully
//	independent. Two concurrent checks for the same document race
//	benignly: whichever finishes last owns the stored set.
type Session struct {
	invoker       Invoker
	store         *diagnostics.Store
	notifier      Notifier
	workspaceRoot string
	analyzerOpts  analyzer.Options
	enabled       bool

	mu              sync.Mutex
	failureNotified bool
}

// Option configures the Session.
type Option func(*Session)

// WithNotifier sets the failure notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithWorkspaceRoot sets the workspace root used as the analyzer's
// working directory.
func WithWorkspaceRoot(dir string) Option {
	return func(s *Session) {
		s.workspaceRoot = dir
	}
}

// WithAnalyzerOptions sets the per-run analyzer options.
func WithAnalyzerOptions(opts analyzer.Options) Option {
	return func(s *Session) {
		s.analyzerOpts = opts
	}
}

// WithEnabled toggles checking. A disabled session clears instead of
// analyzing, so previously published findings disappear.
func WithEnabled(enabled bool) Option {
	return func(s *Session) {
		s.enabled = enabled
	}
}

// NewSession creates a session around an invoker and a diagnostics store.
func NewSession(invoker Invoker, store *diagnostics.Store, opts ...Option) *Session {
	s := &Session{
		invoker:  invoker,
		store:    store,
		notifier: NopNotifier{},
		enabled:  true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store returns the diagnostics store the session writes to.
func (s *Session) Store() *diagnostics.Store {
	return s.store
}

// SetWorkspaceRoot updates the workspace root after construction. The
// LSP server learns the root from the initialize request.
func (s *Session) SetWorkspaceRoot(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceRoot = dir
}

// Check runs one full analysis cycle for a document.
//
// Description:
//
//	Builds the AnalysisRequest, runs the analyzer synchronously, maps
//	the output against doc, and replaces the document's stored
//	diagnostics with the result. The analyzer reads filePath from disk
//	while doc supplies line count and line text, which may be newer;
//	out-of-range findings are dropped by the mapper.
//
//	On invocation failure the document's diagnostics are cleared, the
//	one-shot notification fires if it never has, and the error is
//	returned for the caller to classify via errors.Is against
//	analyzer.ErrAnalyzerFailed / analyzer.ErrAnalyzerNotInstalled.
//
// Inputs:
//
//	ctx - Context for cancellation (no timeout is added here)
//	docID - Document identity used as the diagnostics key
//	doc - Line access to the document text
//	filePath - Absolute path the analyzer reads from disk
//
// Outputs:
//
//	[]diagnostics.Diagnostic - The replacement set, in output order
//	error - Non-nil only on invocation failure
//
// Thread Safety: Safe for concurrent use.
func (s *Session) Check(ctx context.Context, docID string, doc hint.LineSource, filePath string) ([]diagnostics.Diagnostic, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if docID == "" || filePath == "" {
		return nil, fmt.Errorf("%w: docID and filePath must not be empty", ErrInvalidInput)
	}

	if !s.enabled {
		s.store.Clear(docID)
		return nil, nil
	}

	runID := uuid.NewString()[:12]
	ctx, span := startCheckSpan(ctx, docID, runID)
	defer span.End()
	start := time.Now()

	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()

	req := analyzer.AnalysisRequest{
		FilePath:   filePath,
		WorkingDir: root,
		Options:    s.analyzerOpts,
	}

	raw, err := s.invoker.Run(ctx, req)
	if err != nil {
		// Never leave stale diagnostics behind a failed run.
		s.store.Clear(docID)
		s.notifyFailureOnce(err)
		recordCheckMetrics(ctx, time.Since(start), 0, false)

		slog.Warn("Check failed, diagnostics cleared",
			slog.String("run_id", runID),
			slog.String("doc", docID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	diags := hint.Parse(raw.CombinedOutput, doc)
	s.store.Replace(docID, diags)

	setCheckSpanResult(span, len(diags), raw.ExitCode)
	recordCheckMetrics(ctx, time.Since(start), len(diags), true)

	slog.Debug("Check completed",
		slog.String("run_id", runID),
		slog.String("doc", docID),
		slog.Int("diagnostics", len(diags)),
		slog.Duration("duration", time.Since(start)),
	)

	return diags, nil
}

// Forget drops a document's diagnostics, for when it closes.
func (s *Session) Forget(docID string) {
	s.store.Clear(docID)
}

// notifyFailureOnce fires the user-visible notification on the first
// invocation failure of the session and never again.
func (s *Session) notifyFailureOnce(err error) {
	s.mu.Lock()
	already := s.failureNotified
	s.failureNotified = true
	s.mu.Unlock()

	if already {
		return
	}

	message := "phpmnd could not be run. Check that the analyzer is installed and the configured path is correct."
	if errors.Is(err, analyzer.ErrAnalyzerNotInstalled) {
		message = "phpmnd was not found in PATH. Install it (composer global require povils/phpmnd) or set analyzer.path."
	}
	s.notifier.NotifyInvocationFailure(message)
}
