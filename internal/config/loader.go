// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the tool configuration from YAML.
//
// Load returns an explicit *Config; there is no global singleton. Flags
// override loaded values in the command layer, and a missing file is not
// an error: absent sections keep their defaults, so partial files work.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the user's home directory
// when no --config flag is given.
const FileName = ".phpmnd-ls.yaml"

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads the configuration at path.
//
// Description:
//
//	Starts from Default() and unmarshals the file over it, so fields the
//	file omits keep their default values. An empty path means
//	DefaultPath(). A missing file yields the defaults without error; an
//	unreadable or malformed file is an error.
//
// Inputs:
//
//	path - Config file path, or "" for the default location
//
// Outputs:
//
//	*Config - The effective configuration
//	error - Non-nil if the file exists but cannot be used
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories as needed. Used by first-run setup.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
