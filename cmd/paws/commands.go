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
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

// --- Global Command Variables ---
var (
	configPath string

	catsReason  string
	catsOutput  string
	catsCurate  bool
	dogsOutput  string
	dogsSummary string
	applySess   string

	rootCmd = &cobra.Command{
		Use:   "paws",
		Short: "A CLI to build and apply PAWS change bundles",
		Long: `paws manages change bundles against a local artifact store:
snapshot files into Cats bundles for review, serialize change proposals
into Dogs bundles, and apply Dogs bundles transactionally.`,
	}

	// --- Bundle building ---
	catsCmd = &cobra.Command{
		Use:   "cats [path...]",
		Short: "Bundle the full content of selected files into a Cats document",
		Long: `Reads the named files from the artifact store and writes a single
Cats bundle to the destination. With --curate and no paths, the curation
oracle (or its recency fallback) picks the files for the stated reason.`,
		Run: runCatsCommand, // Defined in cmd_cats.go
	}

	dogsCmd = &cobra.Command{
		Use:   "dogs [manifest.yaml]",
		Short: "Serialize a change manifest into a Dogs bundle",
		Long: `Reads a local YAML manifest of CREATE/MODIFY/DELETE changes and
writes the serialized Dogs bundle to the artifact store, ready for apply.`,
		Args: cobra.ExactArgs(1),
		Run:  runDogsCommand, // Defined in cmd_dogs.go
	}

	// --- Applying ---
	applyCmd = &cobra.Command{
		Use:   "apply [bundle-path]",
		Short: "Apply a Dogs bundle to the artifact store transactionally",
		Long: `Parses the bundle at the given store path and applies every change,
or none: a policy violation or failed precondition rolls the store back
to its pre-apply state. --session confines writes outside the session
workspace to unprotected paths.`,
		Args: cobra.ExactArgs(1),
		Run:  runApplyCommand, // Defined in cmd_apply.go
	}

	parseCmd = &cobra.Command{
		Use:   "parse [bundle-file]",
		Short: "Parse a local bundle file and list its changes without applying",
		Args:  cobra.ExactArgs(1),
		Run:   runParseCommand, // Defined in cmd_parse.go
	}

	// --- Artifact store administration ---
	storeCmd = &cobra.Command{
		Use:   "store",
		Short: "Inspect and edit the artifact store directly",
	}
	storePutCmd = &cobra.Command{
		Use:   "put [store-path] [local-file]",
		Short: "Write a local file's content into the artifact store",
		Args:  cobra.ExactArgs(2),
		Run:   runStorePut, // Defined in cmd_store.go
	}
	storeGetCmd = &cobra.Command{
		Use:   "get [store-path]",
		Short: "Print an artifact's content to stdout",
		Args:  cobra.ExactArgs(1),
		Run:   runStoreGet, // Defined in cmd_store.go
	}
	storeListCmd = &cobra.Command{
		Use:   "ls",
		Short: "List all artifacts with size and modification time",
		Run:   runStoreList, // Defined in cmd_store.go
	}
	storeDeleteCmd = &cobra.Command{
		Use:   "rm [store-path]",
		Short: "Delete an artifact",
		Args:  cobra.ExactArgs(1),
		Run:   runStoreDelete, // Defined in cmd_store.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath,
		"Path to the configuration file")

	catsCmd.Flags().StringVar(&catsReason, "reason", "", "Why this bundle is being built (doubles as the curation goal)")
	catsCmd.Flags().StringVarP(&catsOutput, "output", "o", "", "Destination store path for the bundle (required)")
	catsCmd.Flags().BoolVar(&catsCurate, "curate", false, "Let the curation oracle pick the files")
	_ = catsCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(catsCmd)

	dogsCmd.Flags().StringVarP(&dogsOutput, "output", "o", "", "Destination store path for the bundle (required)")
	dogsCmd.Flags().StringVar(&dogsSummary, "summary", "", "Free-form summary recorded in the bundle header")
	_ = dogsCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(dogsCmd)

	applyCmd.Flags().StringVar(&applySess, "session", "", "Session ID whose workspace scopes the apply")
	rootCmd.AddCommand(applyCmd)

	rootCmd.AddCommand(parseCmd)

	storeCmd.AddCommand(storePutCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}
