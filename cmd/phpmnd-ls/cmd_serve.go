// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"phpmnd-ls/internal/analyzer"
	"phpmnd-ls/internal/diagnostics"
	"phpmnd-ls/internal/lsp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Language Server Protocol server on stdio",
	Long: `Serve LSP over stdin/stdout for editor integration.

The server checks a document when it is opened or saved and publishes
the findings as diagnostics. Logs go to stderr; stdout carries only
the protocol.

Example editor wiring (generic LSP client):
  command: phpmnd-ls
  args: [serve]
  filetypes: [php]

Exit Codes:
  0 = Clean shutdown (or client disconnect)
  1 = Client exited without shutdown request
  2 = Transport error`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	shutdown := setupTelemetry(ctx)
	defer shutdown(context.Background()) //nolint:errcheck

	runner := analyzer.NewRunner(
		analyzer.WithExecutable(cfg.Analyzer.Path),
	)

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Invoker: runner,
		Store:   diagnostics.NewStore(),
		AnalyzerOptions: analyzer.Options{
			IgnoreNumbers: cfg.Analyzer.IgnoreNumbers,
			IgnoreStrings: cfg.Analyzer.IgnoreStrings,
		},
		Enabled:        cfg.Analyzer.Enabled,
		MatchExtension: cfg.MatchesExtension,
		Version:        Version,
	})

	slog.Info("LSP server starting",
		slog.String("analyzer", runner.Executable()),
		slog.Bool("enabled", cfg.Analyzer.Enabled),
	)

	err := server.Run(ctx)
	switch {
	case err == nil, errors.Is(err, lsp.ErrExit):
		os.Exit(ExitSuccess)
	case errors.Is(err, lsp.ErrExitWithoutShutdown):
		os.Exit(ExitFindings)
	default:
		slog.Error("LSP server failed", slog.String("error", err.Error()))
		os.Exit(ExitError)
	}
}
