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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for check cycles.
var (
	tracer = otel.Tracer("phpmndls.session")
	meter  = otel.Meter("phpmndls.session")
)

// Metrics for check cycles.
var (
	checkLatency     metric.Float64Histogram
	checkTotal       metric.Int64Counter
	diagnosticsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		checkLatency, err = meter.Float64Histogram(
			"check_duration_seconds",
			metric.WithDescription("Duration of full document check cycles"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		checkTotal, err = meter.Int64Counter(
			"checks_total",
			metric.WithDescription("Total number of document check cycles"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsTotal, err = meter.Int64Counter(
			"diagnostics_total",
			metric.WithDescription("Total number of diagnostics produced"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startCheckSpan creates a span for one check cycle.
func startCheckSpan(ctx context.Context, docID, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Session.Check",
		trace.WithAttributes(
			attribute.String("check.doc_id", docID),
			attribute.String("check.run_id", runID),
		),
	)
}

// setCheckSpanResult sets the result attributes on a check span.
func setCheckSpanResult(span trace.Span, diagnostics, exitCode int) {
	span.SetAttributes(
		attribute.Int("check.diagnostics", diagnostics),
		attribute.Int("check.exit_code", exitCode),
	)
}

// recordCheckMetrics records metrics for one check cycle.
func recordCheckMetrics(ctx context.Context, duration time.Duration, diagnostics int, ok bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("ok", ok),
	)

	checkLatency.Record(ctx, duration.Seconds(), attrs)
	checkTotal.Add(ctx, 1, attrs)
	if diagnostics > 0 {
		diagnosticsTotal.Add(ctx, int64(diagnostics), attrs)
	}
}
