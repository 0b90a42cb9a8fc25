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

	"github.com/AleutianAI/paws/services/bundler/builder"
)

func runCatsCommand(cmd *cobra.Command, args []string) {
	if len(args) == 0 && !catsCurate {
		fatal("no input files", fmt.Errorf("pass file paths or use --curate"))
	}

	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	req := builder.CatsRequest{
		Reason:          catsReason,
		DestinationPath: catsOutput,
		UseCuration:     catsCurate,
	}
	if len(args) > 0 {
		req.Paths = args
	}

	b := builder.NewCatsBuilder(st, newCurator(), logger.Slog())
	result, err := b.Build(context.Background(), req)
	if err != nil {
		fatal("building cats bundle", err)
	}

	fmt.Printf("Cats bundle written to %s (%d files)\n", result.Path, result.FilesIncluded)
}
