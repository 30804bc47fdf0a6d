// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging configures structured logging for the tool.
//
// Built on the standard library slog package. All output goes to
// stderr: the serve command's stdout carries the LSP protocol and the
// check command's stdout carries results, so stderr is the only safe
// stream for logs in every mode.
//
// # Usage
//
//	logger := logging.New(logging.Config{Level: "debug"})
//	slog.SetDefault(logger)
//	slog.Info("checking", "file", path)
//
// Setup does both steps in one call for the command layer.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level: debug, info, warn, or error.
	// Unrecognized values fall back to info.
	Level string

	// JSON switches from the text handler to the JSON handler.
	JSON bool

	// Quiet raises the minimum level to error regardless of Level.
	Quiet bool
}

// ParseLevel converts a level name to a slog.Level, tolerant of case.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to stderr per the config.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a logger writing to w; tests capture output here.
func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)
	if cfg.Quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Setup builds the logger and installs it as the process default, so
// packages logging through the top-level slog functions pick it up.
func Setup(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}
