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

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/paws/services/bundler/builder"
	"github.com/AleutianAI/paws/services/bundler/grammar"
)

// changeManifest is the YAML document the dogs command reads.
type changeManifest struct {
	Summary string           `yaml:"summary"`
	Changes []manifestChange `yaml:"changes"`
}

type manifestChange struct {
	Operation string `yaml:"operation"`
	FilePath  string `yaml:"file_path"`

	// Content is inline content for CREATE and MODIFY. Mutually
	// exclusive with ContentFile.
	Content string `yaml:"content"`

	// ContentFile names a local file whose bytes become the content.
	ContentFile string `yaml:"content_file"`
}

func runDogsCommand(cmd *cobra.Command, args []string) {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		fatal("reading manifest", err)
	}
	var manifest changeManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		fatal("parsing manifest", err)
	}

	changes, err := manifestToChanges(manifest)
	if err != nil {
		fatal("invalid manifest", err)
	}

	st, closeStore, err := openStore()
	if err != nil {
		fatal("opening artifact store", err)
	}
	defer closeStore()

	summary := dogsSummary
	if summary == "" {
		summary = manifest.Summary
	}

	b := builder.NewDogsBuilder(st, logger.Slog())
	result, err := b.Build(context.Background(), builder.DogsRequest{
		Changes:         changes,
		DestinationPath: dogsOutput,
		Summary:         summary,
	})
	if err != nil {
		fatal("building dogs bundle", err)
	}

	fmt.Printf("Dogs bundle written to %s (%d changes)\n", result.Path, result.ChangesCount)
}

// manifestToChanges validates each manifest entry and converts it to a
// grammar change.
func manifestToChanges(manifest changeManifest) ([]grammar.Change, error) {
	changes := make([]grammar.Change, 0, len(manifest.Changes))
	for i, mc := range manifest.Changes {
		op, ok := grammar.ParseOperation(mc.Operation)
		if !ok {
			return nil, fmt.Errorf("change %d: unknown operation %q", i, mc.Operation)
		}
		if mc.FilePath == "" {
			return nil, fmt.Errorf("change %d: file_path is required", i)
		}

		content := mc.Content
		if mc.ContentFile != "" {
			if mc.Content != "" {
				return nil, fmt.Errorf("change %d: content and content_file are mutually exclusive", i)
			}
			data, err := os.ReadFile(mc.ContentFile)
			if err != nil {
				return nil, fmt.Errorf("change %d: reading content_file: %w", i, err)
			}
			content = string(data)
		}

		switch op {
		case grammar.OpCreate:
			changes = append(changes, grammar.NewCreate(mc.FilePath, content))
		case grammar.OpModify:
			changes = append(changes, grammar.NewModify(mc.FilePath, content))
		case grammar.OpDelete:
			if content != "" {
				return nil, fmt.Errorf("change %d: DELETE takes no content", i)
			}
			changes = append(changes, grammar.NewDelete(mc.FilePath))
		}
	}
	return changes, nil
}
