// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package builder assembles Cats and Dogs bundle documents and writes
// them to the artifact store.
//
// A Cats bundle is a snapshot of selected files' full content for review
// or model context; a Dogs bundle is a serialized change proposal for the
// transactional applier. Both share the grammar package's wire format.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/paws/services/bundler/curation"
	"github.com/AleutianAI/paws/services/bundler/grammar"
	"github.com/AleutianAI/paws/services/bundler/store"
)

// readConcurrency bounds parallel store reads while building a Cats
// bundle. Reads may skip independently; serialization order is fixed by
// the request, not by read completion.
const readConcurrency = 8

// ErrNoDestination is returned when a build request omits the
// destination artifact path.
var ErrNoDestination = errors.New("destination path is required")

// CatsRequest describes one Cats bundle build.
type CatsRequest struct {
	// Paths lists the files to bundle. Nil with UseCuration set means
	// "let the oracle pick".
	Paths []string

	// Reason is free-form context recorded in the bundle header. It
	// doubles as the curation goal when Paths is nil.
	Reason string

	// DestinationPath is where the bundle artifact is written.
	DestinationPath string

	// UseCuration resolves the file list via the curation oracle when
	// Paths is nil.
	UseCuration bool
}

// CatsResult reports a completed Cats build.
type CatsResult struct {
	Success bool

	// Path is the destination artifact path.
	Path string

	// FilesIncluded counts files actually bundled, after skips.
	FilesIncluded int
}

// CatsBuilder assembles snapshot bundles from the artifact store.
type CatsBuilder struct {
	store   store.ArtifactStore
	curator *curation.Curator
	logger  *slog.Logger
}

// NewCatsBuilder creates a Cats builder.
//
// Inputs:
//
//	st - The artifact store to read from and write to. Must not be nil.
//	curator - Used when a request asks for curation. May be nil; curated
//	          requests then resolve to an empty selection.
//	logger - Logger for skip warnings. Nil falls back to slog.Default.
func NewCatsBuilder(st store.ArtifactStore, curator *curation.Curator, logger *slog.Logger) *CatsBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatsBuilder{store: st, curator: curator, logger: logger}
}

// Build assembles a Cats bundle and writes it to the destination.
//
// Description:
//
//	Resolves the file list (explicit or curated), reads each file from
//	the store, and serializes the survivors into one bundle artifact.
//	A read failure or missing file is logged and skipped; partial
//	failure never aborts the build. Only an invalid request or a failed
//	destination write is fatal.
//
// Outputs:
//
//	CatsResult - FilesIncluded counts post-skip survivors.
//	error - Non-nil only for a missing destination or a failed final
//	        write.
//
// Thread Safety: Safe for concurrent use.
func (b *CatsBuilder) Build(ctx context.Context, req CatsRequest) (CatsResult, error) {
	if req.DestinationPath == "" {
		return CatsResult{}, ErrNoDestination
	}

	paths := req.Paths
	if paths == nil && req.UseCuration {
		index, err := b.store.ListArtifactMetadata(ctx)
		if err != nil {
			b.logger.Warn("listing artifacts for curation failed, building empty bundle",
				"error", err)
		} else if b.curator != nil {
			paths = b.curator.Curate(ctx, req.Reason, index)
		}
	}

	entries := b.readAll(ctx, paths)

	changes := make([]grammar.Change, 0, len(entries))
	for _, e := range entries {
		// Snapshot files ride as MODIFY-like blocks: full content, to
		// be reviewed rather than applied.
		changes = append(changes, grammar.NewModify(e.path, e.content))
	}

	header := catsHeader(req.Reason, len(changes))
	document := grammar.Serialize(changes, header)

	if err := b.store.WriteArtifact(ctx, req.DestinationPath, document); err != nil {
		return CatsResult{}, fmt.Errorf("write cats bundle %s: %w", req.DestinationPath, err)
	}

	b.logger.Info("cats bundle written",
		"path", req.DestinationPath,
		"files_included", len(changes),
		"files_requested", len(paths))

	return CatsResult{
		Success:       true,
		Path:          req.DestinationPath,
		FilesIncluded: len(changes),
	}, nil
}

// fileEntry is one successfully read file, in request order.
type fileEntry struct {
	path    string
	content string
}

// readAll reads the requested paths with bounded concurrency, skipping
// failures and absences, and returns survivors in request order.
func (b *CatsBuilder) readAll(ctx context.Context, paths []string) []fileEntry {
	results := make([]*fileEntry, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			content, found, err := b.store.ReadArtifact(gctx, path)
			if err != nil {
				b.logger.Warn("skipping unreadable file", "path", path, "error", err)
				return nil
			}
			if !found {
				b.logger.Warn("skipping missing file", "path", path)
				return nil
			}
			mu.Lock()
			results[i] = &fileEntry{path: path, content: content}
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only orders the goroutines.
	_ = g.Wait()

	entries := make([]fileEntry, 0, len(paths))
	for _, r := range results {
		if r != nil {
			entries = append(entries, *r)
		}
	}
	return entries
}

// catsHeader renders the free-form header for a Cats document.
func catsHeader(reason string, fileCount int) string {
	var sb strings.Builder
	sb.WriteString("# Cats Bundle\n")
	if reason != "" {
		sb.WriteString("# Reason: ")
		sb.WriteString(reason)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "# Files: %d\n", fileCount)
	return sb.String()
}
