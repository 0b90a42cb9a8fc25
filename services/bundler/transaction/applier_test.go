// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/paws/services/bundler/grammar"
	"github.com/AleutianAI/paws/services/bundler/store"
)

// countingStore wraps an ArtifactStore and counts the transaction
// control and mutation calls, so tests can assert exactly-once restore
// semantics and the absence of writes on rejected runs.
type countingStore struct {
	store.ArtifactStore
	checkpoints int
	restores    int
	commits     int
	writes      int
	deletes     int
}

func (c *countingStore) WriteArtifact(ctx context.Context, path, content string) error {
	c.writes++
	return c.ArtifactStore.WriteArtifact(ctx, path, content)
}

func (c *countingStore) DeleteArtifact(ctx context.Context, path string) error {
	c.deletes++
	return c.ArtifactStore.DeleteArtifact(ctx, path)
}

func (c *countingStore) Checkpoint(ctx context.Context) (store.CheckpointID, error) {
	c.checkpoints++
	return c.ArtifactStore.Checkpoint(ctx)
}

func (c *countingStore) Restore(ctx context.Context, id store.CheckpointID) error {
	c.restores++
	return c.ArtifactStore.Restore(ctx, id)
}

func (c *countingStore) Commit(ctx context.Context) error {
	c.commits++
	return c.ArtifactStore.Commit(ctx)
}

func newFixture(t *testing.T, files map[string]string, changes []grammar.Change) (*Applier, *countingStore) {
	t.Helper()
	ctx := context.Background()
	cs := &countingStore{ArtifactStore: store.NewMemoryStore()}
	for path, content := range files {
		require.NoError(t, cs.WriteArtifact(ctx, path, content))
	}
	if changes != nil {
		document := grammar.Serialize(changes, "# Dogs Bundle\n")
		require.NoError(t, cs.WriteArtifact(ctx, "/sessions/s1/dogs.md", document))
	}
	return NewApplier(cs, nil), cs
}

func snapshot(t *testing.T, s store.ArtifactStore) map[string]string {
	t.Helper()
	ctx := context.Background()
	index, err := s.ListArtifactMetadata(ctx)
	require.NoError(t, err)
	out := make(map[string]string, len(index))
	for path := range index {
		content, found, err := s.ReadArtifact(ctx, path)
		require.NoError(t, err)
		require.True(t, found)
		out[path] = content
	}
	return out
}

func TestApply_CommitsFullBundle(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{"/src/app.js": "old\n", "/src/dead.js": "x\n"},
		[]grammar.Change{
			grammar.NewCreate("/src/new.js", "fresh\n"),
			grammar.NewModify("/src/app.js", "new\n"),
			grammar.NewDelete("/src/dead.js"),
		})

	outcome, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/sessions/s1/dogs.md"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	// Every applied path, bundle order.
	assert.Equal(t, []string{"/src/new.js", "/src/app.js", "/src/dead.js"}, outcome.ChangesApplied)

	ctx := context.Background()
	content, found, _ := cs.ReadArtifact(ctx, "/src/new.js")
	assert.True(t, found)
	assert.Equal(t, "fresh\n", content)
	content, _, _ = cs.ReadArtifact(ctx, "/src/app.js")
	assert.Equal(t, "new\n", content)
	_, found, _ = cs.ReadArtifact(ctx, "/src/dead.js")
	assert.False(t, found)

	assert.Equal(t, 1, cs.checkpoints)
	assert.Equal(t, 0, cs.restores)
	assert.Equal(t, 1, cs.commits)
}

func TestApply_CreateExistingAborts(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{"/src/app.js": "original\n"},
		[]grammar.Change{
			grammar.NewCreate("/src/helper.js", "h\n"),
			grammar.NewCreate("/src/app.js", "clobber\n"),
		})
	before := snapshot(t, cs.ArtifactStore)

	outcome, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/sessions/s1/dogs.md"})
	assert.False(t, outcome.Success)

	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "/src/app.js", exists.Path)
	var aborted *ApplyError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, 1, aborted.ChangeIndex)

	// The first change landed before the abort; restore must erase it.
	assert.Equal(t, before, snapshot(t, cs.ArtifactStore))
	assert.Equal(t, 1, cs.restores)
	assert.Equal(t, 0, cs.commits)
}

func TestApply_ModifyMissingAborts(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{},
		[]grammar.Change{grammar.NewModify("/src/ghost.js", "content\n")})
	before := snapshot(t, cs.ArtifactStore)

	_, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/sessions/s1/dogs.md"})

	var missing *NotFoundError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "/src/ghost.js", missing.Path)
	assert.Equal(t, before, snapshot(t, cs.ArtifactStore))
	assert.Equal(t, 1, cs.restores)
}

func TestApply_SessionScopeRejectsProtectedPaths(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{"/modules/api.js": "shared\n"},
		[]grammar.Change{
			grammar.NewCreate("/sessions/s1/notes.md", "mine\n"),
			grammar.NewModify("/modules/api.js", "tampered\n"),
		})
	before := snapshot(t, cs.ArtifactStore)

	_, err := applier.Apply(context.Background(), ApplyRequest{
		BundlePath: "/sessions/s1/dogs.md",
		SessionID:  "s1",
	})

	var violation *PathViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "/modules/api.js", violation.Path)
	assert.Contains(t, err.Error(), "violates session workspace constraints")

	assert.Equal(t, before, snapshot(t, cs.ArtifactStore))
	assert.Equal(t, 1, cs.restores)
}

func TestApply_SessionViolationPrecedesAnyMutation(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{"/modules/api.js": "shared\n"},
		[]grammar.Change{grammar.NewModify("/modules/api.js", "tampered\n")})
	writesBefore, deletesBefore := cs.writes, cs.deletes

	_, err := applier.Apply(context.Background(), ApplyRequest{
		BundlePath: "/sessions/s1/dogs.md",
		SessionID:  "s1",
	})

	var violation *PathViolationError
	require.ErrorAs(t, err, &violation)

	// The violation is raised before the change executes: no artifact
	// write or delete ever reached the store.
	assert.Equal(t, writesBefore, cs.writes)
	assert.Equal(t, deletesBefore, cs.deletes)
	assert.Equal(t, 1, cs.restores)
}

func TestApply_UnscopedTouchesProtectedPaths(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{"/modules/api.js": "shared\n"},
		[]grammar.Change{grammar.NewModify("/modules/api.js", "updated\n")})

	outcome, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/sessions/s1/dogs.md"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	content, _, _ := cs.ReadArtifact(context.Background(), "/modules/api.js")
	assert.Equal(t, "updated\n", content)
}

func TestApply_DeleteAbsentIsTolerated(t *testing.T) {
	applier, cs := newFixture(t,
		map[string]string{"/src/app.js": "x\n"},
		[]grammar.Change{
			grammar.NewDelete("/src/never-existed.js"),
			grammar.NewModify("/src/app.js", "y\n"),
		})

	outcome, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/sessions/s1/dogs.md"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, []string{"/src/never-existed.js", "/src/app.js"}, outcome.ChangesApplied)
	assert.Equal(t, 0, cs.restores)
}

func TestApply_BundleNotFound(t *testing.T) {
	applier, cs := newFixture(t, map[string]string{}, nil)

	_, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/nowhere/dogs.md"})
	require.ErrorIs(t, err, ErrBundleNotFound)

	// Rejected before any transaction began.
	assert.Equal(t, 0, cs.checkpoints)
	assert.Equal(t, 0, cs.restores)
}

func TestApply_EmptyBundleRejectedWithoutError(t *testing.T) {
	applier, cs := newFixture(t, map[string]string{}, []grammar.Change{})

	outcome, err := applier.Apply(context.Background(), ApplyRequest{BundlePath: "/sessions/s1/dogs.md"})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "No valid changes found in bundle", outcome.Message)
	assert.Equal(t, 0, cs.checkpoints)
}

func TestApply_MalformedBlocksSkippedValidOnesApply(t *testing.T) {
	ctx := context.Background()
	cs := &countingStore{ArtifactStore: store.NewMemoryStore()}

	// One unparseable block followed by one valid CREATE. Parsing keeps
	// the valid block; the apply commits it.
	document := "```paws-change\noperation: BOGUS\nfile_path: /x\n```\n\n" +
		"```paws-change\noperation: CREATE\nfile_path: /src/ok.js\n```\n\n```\nok\n```\n\n"
	require.NoError(t, cs.WriteArtifact(ctx, "/b.md", document))

	applier := NewApplier(cs, nil)
	outcome, err := applier.Apply(ctx, ApplyRequest{BundlePath: "/b.md"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, []string{"/src/ok.js"}, outcome.ChangesApplied)

	content, found, _ := cs.ReadArtifact(ctx, "/src/ok.js")
	assert.True(t, found)
	assert.Equal(t, "ok\n", content)
}
