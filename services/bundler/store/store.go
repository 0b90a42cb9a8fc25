// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store defines the versioned artifact store contract the bundle
// engine drives, plus two implementations: an in-memory store for tests
// and CLI defaults, and a BadgerDB-backed store for durable local use.
//
// The engine itself only ever consumes the ArtifactStore interface; the
// store is a collaborator, not part of the engine.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownCheckpoint is returned by Restore for a handle that was never
// issued, or that was already consumed by an earlier Restore or Commit.
var ErrUnknownCheckpoint = errors.New("unknown checkpoint handle")

// CheckpointID is an opaque point-in-time recoverability handle.
//
// The applier owns a handle for the duration of one transaction: it is
// discarded by Commit and consumed by Restore. Callers must not interpret
// its contents.
type CheckpointID string

// ArtifactMetadata describes one stored artifact without its content.
type ArtifactMetadata struct {
	// Path is the artifact's absolute path key.
	Path string

	// Size is the content length in bytes.
	Size int64

	// UpdatedAt is when the artifact was last written.
	UpdatedAt time.Time
}

// ArtifactStore is the versioned artifact store collaborator contract.
//
// All operations are context-aware and may suspend. Implementations must
// be safe for concurrent use, but nothing in this contract serializes
// concurrent transactions against each other: the engine assumes a single
// writer, and concurrent appliers need an external lock or queue.
type ArtifactStore interface {
	// ReadArtifact returns the content at path. The boolean reports
	// presence; a missing artifact is (_, false, nil), not an error.
	ReadArtifact(ctx context.Context, path string) (content string, found bool, err error)

	// WriteArtifact creates or overwrites the artifact at path.
	WriteArtifact(ctx context.Context, path, content string) error

	// DeleteArtifact removes the artifact at path. Deleting an absent
	// path is not an error.
	DeleteArtifact(ctx context.Context, path string) error

	// ListArtifactMetadata returns metadata for every stored artifact,
	// keyed by path.
	ListArtifactMetadata(ctx context.Context) (map[string]ArtifactMetadata, error)

	// Checkpoint captures the current state and returns a handle that
	// Restore can roll back to.
	Checkpoint(ctx context.Context) (CheckpointID, error)

	// Restore rolls the store back to the captured state and consumes
	// the handle.
	Restore(ctx context.Context, id CheckpointID) error

	// Commit finalizes all writes since the last checkpoint and discards
	// retained checkpoints. This is a durability signal, distinct from
	// the checkpoint/restore pair.
	Commit(ctx context.Context) error
}
