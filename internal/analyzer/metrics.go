// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for analyzer runs.
var (
	tracer = otel.Tracer("phpmndls.analyzer")
	meter  = otel.Meter("phpmndls.analyzer")
)

// Metrics for analyzer runs.
var (
	runLatency metric.Float64Histogram
	runTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"analyzer_run_duration_seconds",
			metric.WithDescription("Duration of analyzer subprocess runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"analyzer_runs_total",
			metric.WithDescription("Total number of analyzer subprocess runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for one analyzer run.
func startRunSpan(ctx context.Context, executable, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Runner.Run",
		trace.WithAttributes(
			attribute.String("analyzer.executable", executable),
			attribute.String("analyzer.file_path", filePath),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, exitCode, outputBytes int) {
	span.SetAttributes(
		attribute.Int("analyzer.exit_code", exitCode),
		attribute.Int("analyzer.output_bytes", outputBytes),
	)
}

// recordRunMetrics records metrics for one analyzer run.
func recordRunMetrics(ctx context.Context, executable string, duration time.Duration, invoked bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("executable", executable),
		attribute.Bool("invoked", invoked),
	)

	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
}
