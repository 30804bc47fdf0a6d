// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"strings"
)

// Config is the full tool configuration.
type Config struct {
	// Analyzer: how to run the magic-number analyzer
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Log: stderr logging behavior
	Log LogConfig `yaml:"log"`

	// Telemetry: optional traces/metrics export
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type AnalyzerConfig struct {
	Path          string   `yaml:"path"`           // e.g. "phpmnd" or "/usr/local/bin/phpmnd"
	IgnoreNumbers []string `yaml:"ignore_numbers"` // e.g. ["0", "1"]
	IgnoreStrings []string `yaml:"ignore_strings"` // e.g. ["define", "property"]
	Extensions    []string `yaml:"extensions"`     // e.g. [".php"]
	Enabled       bool     `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

type TelemetryConfig struct {
	// TraceExporter can be "otlp", "stdout", or "none".
	TraceExporter string `yaml:"trace_exporter"`

	// MetricExporter can be "prometheus", "stdout", or "none".
	MetricExporter string `yaml:"metric_exporter"`

	OTLPEndpoint   string `yaml:"otlp_endpoint"`   // e.g. "localhost:4317"
	PrometheusPort int    `yaml:"prometheus_port"` // e.g. 9464
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			Path:          "phpmnd",
			IgnoreNumbers: []string{},
			IgnoreStrings: []string{},
			Extensions:    []string{".php"},
			Enabled:       true,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
			PrometheusPort: 9464,
		},
	}
}

// normalize cleans up user-provided values after unmarshaling.
func (c *Config) normalize() {
	for i, ext := range c.Analyzer.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Analyzer.Extensions[i] = ext
	}
	if len(c.Analyzer.Extensions) == 0 {
		c.Analyzer.Extensions = []string{".php"}
	}
	if c.Analyzer.Path == "" {
		c.Analyzer.Path = "phpmnd"
	}
}

// MatchesExtension reports whether a file path has one of the configured
// analyzer extensions.
func (c *Config) MatchesExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range c.Analyzer.Extensions {
		if ext != "" && strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
