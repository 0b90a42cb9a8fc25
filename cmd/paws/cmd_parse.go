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

	"github.com/AleutianAI/paws/services/bundler/grammar"
)

func runParseCommand(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fatal("reading bundle file", err)
	}

	changes := grammar.Parse(string(data))
	if len(changes) == 0 {
		fmt.Println("No valid changes found in bundle")
		return
	}

	for i, c := range changes {
		if c.HasContent() {
			fmt.Printf("%3d  %-6s  %s  (%d bytes)\n", i+1, c.Op, c.Path, len(c.Content))
		} else {
			fmt.Printf("%3d  %-6s  %s\n", i+1, c.Op, c.Path)
		}
	}
	fmt.Printf("%d changes total\n", len(changes))
}
