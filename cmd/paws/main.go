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
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/paws/pkg/logging"
)

var (
	config Config
	logger *logging.Logger
)

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	if logger != nil {
		_ = logger.Close()
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		config = DefaultConfig()

		yamlFile, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(yamlFile, &config); err != nil {
				log.Fatalf("Error parsing %s: %v", configPath, err)
			}
		} else if configPath != defaultConfigPath {
			// An explicitly requested config file must exist.
			log.Fatalf("Error reading %s: %v", configPath, err)
		}

		if err := config.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		logger = logging.New(logging.Config{
			Level:   config.Logging.MinLevel(),
			LogDir:  config.Logging.Dir,
			Service: "paws",
			JSON:    config.Logging.JSON,
			Quiet:   config.Logging.Quiet,
		})
	}
}
