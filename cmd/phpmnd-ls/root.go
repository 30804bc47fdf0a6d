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
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"phpmnd-ls/internal/config"
	"phpmnd-ls/internal/telemetry"
	"phpmnd-ls/pkg/logging"
)

// Exit codes shared by all subcommands.
const (
	ExitSuccess  = 0
	ExitFindings = 1
	ExitError    = 2
)

// --- Global Command Variables ---
var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool
	flagAnalyzer string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "phpmnd-ls",
		Short: "PHP magic-number diagnostics for editors and CI",
		Long: `phpmnd-ls wraps the PHP Magic Number Detector (phpmnd) and maps its
hint-mode output onto precise source positions. It can run as a
one-shot checker, a Language Server Protocol server on stdio, or a
filesystem watcher.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded

			// Flags override loaded values.
			if flagAnalyzer != "" {
				cfg.Analyzer.Path = flagAnalyzer
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = flagLogLevel
			}
			if cmd.Flags().Changed("log-json") {
				cfg.Log.JSON = flagLogJSON
			}

			logging.Setup(logging.Config{
				Level: cfg.Log.Level,
				JSON:  cfg.Log.JSON,
			})
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file path (default ~/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false,
		"Log as JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&flagAnalyzer, "analyzer", "",
		"Analyzer executable path or command name (overrides config)")
}

// setupTelemetry initializes the otel stack from the effective config.
//
// Environment variables take precedence over the config file, matching
// the usual OTEL_* conventions. Returns a shutdown function that is
// safe to defer even when telemetry is fully disabled.
func setupTelemetry(ctx context.Context) func(context.Context) error {
	tcfg := telemetry.DefaultConfig(Version)
	if os.Getenv("OTEL_TRACES_EXPORTER") == "" && cfg.Telemetry.TraceExporter != "" {
		tcfg.TraceExporter = cfg.Telemetry.TraceExporter
	}
	if os.Getenv("OTEL_METRICS_EXPORTER") == "" && cfg.Telemetry.MetricExporter != "" {
		tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" && cfg.Telemetry.OTLPEndpoint != "" {
		tcfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		slog.Warn("Telemetry disabled", slog.String("error", err.Error()))
		return func(context.Context) error { return nil }
	}

	startMetricsListener()
	return shutdown
}

// startMetricsListener serves /metrics when the prometheus exporter is
// active. Long-running modes (serve, watch) benefit; the handler is nil
// for every other exporter and nothing is started.
func startMetricsListener() {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return
	}

	addr := fmt.Sprintf("localhost:%d", cfg.Telemetry.PrometheusPort)
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Debug("Serving metrics", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("Metrics listener failed", slog.String("error", err.Error()))
		}
	}()
}
