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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/paws/services/bundler/transaction"
)

func runApplyCommand(cmd *cobra.Command, args []string) {
	bundlePath := args[0]

	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	applier := transaction.NewApplier(st, logger.Slog())
	outcome, err := applier.Apply(context.Background(), transaction.ApplyRequest{
		BundlePath: bundlePath,
		SessionID:  applySess,
	})
	if err != nil {
		// State has already been restored; report why the run aborted.
		fatal("applying bundle", err)
	}
	if !outcome.Success {
		fmt.Println(outcome.Message)
		return
	}

	for _, path := range outcome.ChangesApplied {
		fmt.Printf("  %s\n", path)
	}
	fmt.Printf("Applied %d changes from %s\n", len(outcome.ChangesApplied), bundlePath)
}
