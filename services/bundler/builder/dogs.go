// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/paws/services/bundler/grammar"
	"github.com/AleutianAI/paws/services/bundler/store"
)

// DogsRequest describes one Dogs bundle build.
type DogsRequest struct {
	// Changes is the proposal, serialized in input order. May be empty;
	// the resulting bundle then carries zero blocks.
	Changes []grammar.Change

	// DestinationPath is where the bundle artifact is written.
	DestinationPath string

	// Summary is optional free-form text for the document header.
	Summary string
}

// DogsResult reports a completed Dogs build.
type DogsResult struct {
	Success bool

	// Path is the destination artifact path.
	Path string

	// ChangesCount is the number of serialized change blocks.
	ChangesCount int
}

// DogsBuilder serializes change proposals into bundle documents.
type DogsBuilder struct {
	store  store.ArtifactStore
	logger *slog.Logger
}

// NewDogsBuilder creates a Dogs builder.
func NewDogsBuilder(st store.ArtifactStore, logger *slog.Logger) *DogsBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &DogsBuilder{store: st, logger: logger}
}

// Build serializes the change proposal and writes it to the destination.
//
// Description:
//
//	Each change is encoded into the grammar in input order. The header
//	embeds per-operation counts and the optional summary. An empty
//	change list is accepted and produces a bundle with zero blocks.
//	Failure to write the destination artifact is the only fatal path.
//
// Thread Safety: Safe for concurrent use.
func (b *DogsBuilder) Build(ctx context.Context, req DogsRequest) (DogsResult, error) {
	if req.DestinationPath == "" {
		return DogsResult{}, ErrNoDestination
	}

	var creates, modifies, deletes int
	for _, c := range req.Changes {
		switch c.Op {
		case grammar.OpCreate:
			creates++
		case grammar.OpModify:
			modifies++
		case grammar.OpDelete:
			deletes++
		}
	}

	header := dogsHeader(req.Summary, creates, modifies, deletes)
	document := grammar.Serialize(req.Changes, header)

	if err := b.store.WriteArtifact(ctx, req.DestinationPath, document); err != nil {
		return DogsResult{}, fmt.Errorf("write dogs bundle %s: %w", req.DestinationPath, err)
	}

	b.logger.Info("dogs bundle written",
		"path", req.DestinationPath,
		"creates", creates,
		"modifies", modifies,
		"deletes", deletes)

	return DogsResult{
		Success:      true,
		Path:         req.DestinationPath,
		ChangesCount: len(req.Changes),
	}, nil
}

// dogsHeader renders the free-form header for a Dogs document, including
// the per-operation counts.
func dogsHeader(summary string, creates, modifies, deletes int) string {
	var sb strings.Builder
	sb.WriteString("# Dogs Bundle\n")
	if summary != "" {
		sb.WriteString("# Summary: ")
		sb.WriteString(summary)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "# Changes: Create: %d, Modify: %d, Delete: %d\n", creates, modifies, deletes)
	return sb.String()
}
