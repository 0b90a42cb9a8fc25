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
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func runStorePut(cmd *cobra.Command, args []string) {
	storePath, localFile := args[0], args[1]

	data, err := os.ReadFile(localFile)
	if err != nil {
		fatal("reading local file", err)
	}

	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	if err := st.WriteArtifact(context.Background(), storePath, string(data)); err != nil {
		fatal("writing artifact", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", storePath, len(data))
}

func runStoreGet(cmd *cobra.Command, args []string) {
	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	content, found, err := st.ReadArtifact(context.Background(), args[0])
	if err != nil {
		fatal("reading artifact", err)
	}
	if !found {
		fatal("reading artifact", fmt.Errorf("%s does not exist", args[0]))
	}
	fmt.Print(content)
}

func runStoreList(cmd *cobra.Command, args []string) {
	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	index, err := st.ListArtifactMetadata(context.Background())
	if err != nil {
		fatal("listing artifacts", err)
	}

	paths := make([]string, 0, len(index))
	for path := range index {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		meta := index[path]
		fmt.Printf("%8d  %s  %s\n", meta.Size, meta.UpdatedAt.Format("2006-01-02 15:04:05"), path)
	}
	fmt.Printf("%d artifacts\n", len(paths))
}

func runStoreDelete(cmd *cobra.Command, args []string) {
	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	if err := st.DeleteArtifact(context.Background(), args[0]); err != nil {
		fatal("deleting artifact", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
}
