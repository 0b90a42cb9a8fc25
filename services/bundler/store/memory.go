// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryArtifact is one stored entry with its write timestamp.
type memoryArtifact struct {
	content   string
	updatedAt time.Time
}

// MemoryStore is a map-backed ArtifactStore.
//
// Checkpoints are deep copies of the artifact map keyed by uuid handles.
// Suitable for tests and single-process CLI runs; nothing survives process
// exit.
//
// # Thread Safety
//
// Safe for concurrent use. All state is guarded by one mutex.
type MemoryStore struct {
	mu          sync.Mutex
	artifacts   map[string]memoryArtifact
	checkpoints map[CheckpointID]map[string]memoryArtifact
	now         func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts:   make(map[string]memoryArtifact),
		checkpoints: make(map[CheckpointID]map[string]memoryArtifact),
		now:         time.Now,
	}
}

// ReadArtifact implements ArtifactStore.
func (s *MemoryStore) ReadArtifact(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifacts[path]
	if !ok {
		return "", false, nil
	}
	return a.content, true, nil
}

// WriteArtifact implements ArtifactStore.
func (s *MemoryStore) WriteArtifact(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts[path] = memoryArtifact{content: content, updatedAt: s.now()}
	return nil
}

// DeleteArtifact implements ArtifactStore.
func (s *MemoryStore) DeleteArtifact(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.artifacts, path)
	return nil
}

// ListArtifactMetadata implements ArtifactStore.
func (s *MemoryStore) ListArtifactMetadata(ctx context.Context) (map[string]ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := make(map[string]ArtifactMetadata, len(s.artifacts))
	for path, a := range s.artifacts {
		meta[path] = ArtifactMetadata{
			Path:      path,
			Size:      int64(len(a.content)),
			UpdatedAt: a.updatedAt,
		}
	}
	return meta, nil
}

// Checkpoint implements ArtifactStore.
func (s *MemoryStore) Checkpoint(ctx context.Context) (CheckpointID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]memoryArtifact, len(s.artifacts))
	for path, a := range s.artifacts {
		snapshot[path] = a
	}

	id := CheckpointID(uuid.NewString())
	s.checkpoints[id] = snapshot
	return id, nil
}

// Restore implements ArtifactStore.
func (s *MemoryStore) Restore(ctx context.Context, id CheckpointID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.checkpoints[id]
	if !ok {
		return ErrUnknownCheckpoint
	}

	restored := make(map[string]memoryArtifact, len(snapshot))
	for path, a := range snapshot {
		restored[path] = a
	}
	s.artifacts = restored
	delete(s.checkpoints, id)
	return nil
}

// Commit implements ArtifactStore. For the memory store, durability is a
// no-op; commit just discards retained checkpoints.
func (s *MemoryStore) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints = make(map[CheckpointID]map[string]memoryArtifact)
	return nil
}

var _ ArtifactStore = (*MemoryStore)(nil)
