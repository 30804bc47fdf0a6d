// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestInitNilContext(t *testing.T) {
	var nilCtx context.Context
	_, err := Init(nilCtx, DefaultConfig("test"))
	if !errors.Is(err, ErrNilContext) {
		t.Errorf("Init(nil, cfg) error = %v, want %v", err, ErrNilContext)
	}
}

func TestInitDisabledExporters(t *testing.T) {
	cfg := Config{
		ServiceName:    "phpmnd-ls",
		TraceExporter:  "none",
		MetricExporter: "none",
	}

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init with exporters disabled: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Shutdown function must not be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}

	if MetricsHandler() != nil {
		t.Error("MetricsHandler should be nil without the prometheus exporter")
	}
}

func TestInitUnknownExporter(t *testing.T) {
	cfg := Config{TraceExporter: "carrier-pigeon", MetricExporter: "none"}

	if _, err := Init(context.Background(), cfg); !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("Init error = %v, want ErrUnknownExporter", err)
	}

	cfg = Config{TraceExporter: "none", MetricExporter: "carrier-pigeon"}
	if _, err := Init(context.Background(), cfg); !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("Init error = %v, want ErrUnknownExporter", err)
	}
}

func TestDefaultConfigQuietByDefault(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")

	cfg := DefaultConfig("1.0.0")
	if cfg.TraceExporter != "none" || cfg.MetricExporter != "none" {
		t.Errorf("Defaults = %s/%s, want none/none", cfg.TraceExporter, cfg.MetricExporter)
	}
	if cfg.ServiceName != "phpmnd-ls" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.ServiceVersion != "1.0.0" {
		t.Errorf("ServiceVersion = %q", cfg.ServiceVersion)
	}
}

func TestDefaultConfigEnvOverride(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

	cfg := DefaultConfig("1.0.0")
	if cfg.TraceExporter != "stdout" {
		t.Errorf("TraceExporter = %q, want stdout", cfg.TraceExporter)
	}
}
