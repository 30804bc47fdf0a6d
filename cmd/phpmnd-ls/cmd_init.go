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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"phpmnd-ls/internal/config"
)

var initConfigForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration to the --config path (or
~/` + config.FileName + ` when no path is given) so the available settings
can be edited in place.

Examples:
  phpmnd-ls init-config
  phpmnd-ls init-config --config ./.phpmnd-ls.yaml

Exit Codes:
  0  File written
  2  Write failed or file already exists (use --force to overwrite)`,
	Run: runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false,
		"Overwrite an existing config file")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}

	if !initConfigForce {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "phpmnd-ls: %s already exists (use --force to overwrite)\n", path)
			os.Exit(ExitError)
		}
	}

	if err := config.WriteDefault(path); err != nil {
		fmt.Fprintf(os.Stderr, "phpmnd-ls: %v\n", err)
		os.Exit(ExitError)
	}

	fmt.Printf("Wrote %s\n", path)
	os.Exit(ExitSuccess)
}
