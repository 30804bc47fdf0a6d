// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer invokes the PHP magic-number analyzer as a subprocess
// and classifies the outcome of each run.
//
// # Architecture
//
// The package is the invoker half of a two-stage pipeline:
//
//	AnalysisRequest --> Runner.Run --> RawResult --> hint.Parse --> diagnostics
//
// The runner builds a fixed command line (target file, hint mode flag,
// non-zero-exit flag, optional ignore lists), executes it with the
// request's workspace root as working directory, and captures stdout and
// stderr separately before concatenating them stdout-first.
//
// # Exit Status Contract
//
// The analyzer overloads its exit status:
//
//	exit 0                      clean run, no violations
//	non-zero, output captured   violations found (NOT a failure)
//	non-zero, no output at all  invocation failure
//	cannot start                invocation failure
//
// Both failure rows surface as an error wrapping ErrAnalyzerFailed or
// ErrAnalyzerNotInstalled; both success rows return a RawResult whose
// CombinedOutput feeds the hint parser unchanged.
//
// # Usage
//
//	runner := analyzer.NewRunner(
//	    analyzer.WithExecutable("phpmnd"),
//	    analyzer.WithWorkingDir(workspaceRoot),
//	)
//	result, err := runner.Run(ctx, analyzer.AnalysisRequest{
//	    FilePath: "/abs/path/file.php",
//	    Options:  analyzer.Options{IgnoreNumbers: []string{"0", "1"}},
//	})
//
// # Thread Safety
//
// Runner is safe for concurrent use. Concurrent runs for different files
// are independent; nothing serializes runs for the same file.
package analyzer
