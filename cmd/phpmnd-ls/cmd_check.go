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
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"phpmnd-ls/internal/analyzer"
	"phpmnd-ls/internal/diagnostics"
	"phpmnd-ls/internal/document"
	"phpmnd-ls/internal/output"
	"phpmnd-ls/internal/session"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	checkFormat        string
	checkNoColor       bool
	checkWorkers       int
	checkTimeout       time.Duration
	checkIgnoreNumbers []string
	checkIgnoreStrings []string
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Run the analyzer once over files or directories",
	Long: `Analyze PHP files for magic numbers and print the findings.

Directories are walked recursively; only files matching the configured
extensions (default .php) are checked. Files are checked in parallel up
to the worker limit, each through its own analyzer invocation.

Examples:
  phpmnd-ls check src/
  phpmnd-ls check src/Price.php --format json
  phpmnd-ls check . --ignore-numbers 0,1 --ignore-strings define

Exit Codes:
  0 = No findings
  1 = Findings reported
  2 = Error (bad path, analyzer could not run)`,
	Args: cobra.MinimumNArgs(1),
}

func init() {
	// Assigned here rather than in the literal to avoid an
	// initialization cycle (runCheck -> newCheckSession -> checkCmd).
	checkCmd.Run = runCheck

	checkCmd.Flags().StringVar(&checkFormat, "format", "text",
		"Output format: text or json")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false,
		"Disable colorized output")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0,
		"Number of parallel workers (0 = 2 * NumCPU)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0,
		"Overall deadline for the run (0 = none)")
	checkCmd.Flags().StringSliceVar(&checkIgnoreNumbers, "ignore-numbers", nil,
		"Numbers the analyzer should not report (overrides config)")
	checkCmd.Flags().StringSliceVar(&checkIgnoreStrings, "ignore-strings", nil,
		"Contexts the analyzer should skip (overrides config)")

	rootCmd.AddCommand(checkCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCheck(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	if checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, checkTimeout)
		defer cancel()
	}

	shutdown := setupTelemetry(ctx)
	defer shutdown(context.Background()) //nolint:errcheck

	start := time.Now()
	printer := output.NewPrinter(os.Stdout, output.ParseFormat(checkFormat), checkNoColor)

	files, err := collectPHPFiles(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No matching files to check")
		os.Exit(ExitSuccess)
	}

	sess := newCheckSession()

	workers := checkWorkers
	if workers <= 0 {
		workers = 2 * runtime.NumCPU()
	}

	// One report slot per file keeps input order regardless of which
	// worker finishes first.
	reports := make([]output.FileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		g.Go(func() error {
			reports[i] = checkOneFile(gctx, sess, file)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	report := &output.Report{
		Files:        reports,
		FilesChecked: len(files),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	failed := false
	for i := range reports {
		report.TotalFindings += reports[i].Count
		if reports[i].Error != "" {
			failed = true
		}
	}

	if err := printer.Print(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	switch {
	case failed:
		os.Exit(ExitError)
	case report.TotalFindings > 0:
		os.Exit(ExitFindings)
	default:
		os.Exit(ExitSuccess)
	}
}

// newCheckSession builds the runner and session for CLI-style commands.
// The one-shot failure notification goes to stderr.
func newCheckSession() *session.Session {
	wd, _ := os.Getwd()

	runner := analyzer.NewRunner(
		analyzer.WithExecutable(cfg.Analyzer.Path),
		analyzer.WithWorkingDir(wd),
	)

	ignoreNumbers := cfg.Analyzer.IgnoreNumbers
	if checkCmd.Flags().Changed("ignore-numbers") {
		ignoreNumbers = checkIgnoreNumbers
	}
	ignoreStrings := cfg.Analyzer.IgnoreStrings
	if checkCmd.Flags().Changed("ignore-strings") {
		ignoreStrings = checkIgnoreStrings
	}

	return session.NewSession(runner, diagnostics.NewStore(),
		session.WithNotifier(session.NotifierFunc(func(message string) {
			fmt.Fprintln(os.Stderr, message)
		})),
		session.WithAnalyzerOptions(analyzer.Options{
			IgnoreNumbers: ignoreNumbers,
			IgnoreStrings: ignoreStrings,
		}),
		session.WithEnabled(cfg.Analyzer.Enabled),
		session.WithWorkspaceRoot(wd),
	)
}

// checkOneFile runs one check cycle and folds the outcome into a report.
func checkOneFile(ctx context.Context, sess *session.Session, file string) output.FileReport {
	fr := output.FileReport{File: file, Diagnostics: []diagnostics.Diagnostic{}}

	doc, err := document.NewFromFile(file)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}

	diags, err := sess.Check(ctx, file, doc, file)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}

	fr.Diagnostics = diags
	fr.Count = len(diags)
	return fr
}

// collectPHPFiles expands the path arguments into the list of files to
// check, in argument order. Directories are walked recursively with the
// configured extension filter; explicit file arguments bypass it.
func collectPHPFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Continue on error
			}
			if d.IsDir() {
				return nil
			}
			if cfg.MatchesExtension(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
