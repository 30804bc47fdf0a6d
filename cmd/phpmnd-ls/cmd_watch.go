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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"phpmnd-ls/internal/output"
	"phpmnd-ls/internal/watch"
)

var (
	watchFormat  string
	watchNoColor bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]...",
	Short: "Re-check PHP files as they change on disk",
	Long: `Watch directories and run the analyzer on each written PHP file.

Defaults to the current directory. Results print in the check format
as they arrive. Stop with Ctrl-C.

Examples:
  phpmnd-ls watch
  phpmnd-ls watch src/ tests/ --format json

Exit Codes:
  0 = Stopped by signal
  2 = Watcher could not start`,
	Run: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFormat, "format", "text",
		"Output format: text or json")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false,
		"Disable colorized output")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := setupTelemetry(ctx)
	defer shutdown(context.Background()) //nolint:errcheck

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	sess := newCheckSession()
	printer := output.NewPrinter(os.Stdout, output.ParseFormat(watchFormat), watchNoColor)

	// Events arrive sequentially, so the callback never runs twice at
	// once; a save during a long check just queues behind it.
	watcher, err := watch.NewWatcher(roots, cfg.MatchesExtension, func(path string) {
		fr := checkOneFile(ctx, sess, path)
		if err := printer.PrintFile(&fr); err != nil {
			slog.Warn("Print failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	defer watcher.Stop() //nolint:errcheck

	slog.Info("Watching for changes", slog.Any("roots", roots))
	watcher.Start(ctx)
	os.Exit(ExitSuccess)
}
