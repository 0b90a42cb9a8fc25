// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transaction applies Dogs bundles to the artifact store with
// all-or-nothing semantics.
//
// Every apply that mutates state is bracketed by a store checkpoint. A
// run either commits all of the bundle's changes or restores the
// checkpoint and reports why; no partial state survives either way.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/paws/services/bundler/grammar"
	"github.com/AleutianAI/paws/services/bundler/sandbox"
	"github.com/AleutianAI/paws/services/bundler/store"
)

var tracer = otel.Tracer("paws.transaction")

// ApplyRequest identifies the bundle to apply and the session on whose
// behalf it runs.
type ApplyRequest struct {
	// BundlePath is the artifact path of the Dogs bundle document.
	BundlePath string

	// SessionID scopes path policy. Empty means an unscoped apply with
	// no workspace restriction.
	SessionID string
}

// ApplyOutcome reports the terminal state of one apply run.
type ApplyOutcome struct {
	Success bool

	// ChangesApplied lists the path of every committed change, in bundle
	// order. Nil whenever Success is false.
	ChangesApplied []string

	// Message is a human-readable summary of the outcome.
	Message string
}

// Applier executes Dogs bundles against an artifact store.
type Applier struct {
	store  store.ArtifactStore
	logger *slog.Logger
}

// NewApplier creates an applier over the given store.
func NewApplier(st store.ArtifactStore, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{store: st, logger: logger}
}

// Apply executes the bundle at req.BundlePath transactionally.
//
// Description:
//
//	The bundle is read and parsed first; a missing bundle or one with
//	no valid changes rejects the request before any checkpoint is
//	taken. Otherwise a checkpoint brackets the run: changes execute
//	sequentially in document order, and the first policy violation or
//	precondition failure restores the checkpoint and aborts. A run
//	that survives every change commits, discarding the checkpoint.
//
// Outputs:
//
//	ApplyOutcome - Terminal state. Success is true only after a commit.
//	error - Nil for a commit and for the empty-bundle rejection. A
//	        missing bundle returns ErrBundleNotFound; an aborted run
//	        returns an ApplyError wrapping the per-change cause. When
//	        an error is returned the store matches its pre-apply state
//	        unless the restore itself failed, which is reported as a
//	        distinct wrapped error.
//
// Thread Safety: Safe for concurrent use, but concurrent applies to
// the same store contend on checkpoint scope and should be serialized
// by the caller.
func (a *Applier) Apply(ctx context.Context, req ApplyRequest) (ApplyOutcome, error) {
	ctx, span := tracer.Start(ctx, "transaction.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("bundle.path", req.BundlePath),
		attribute.String("session.id", req.SessionID),
	)

	start := time.Now()
	defer func() { applyDuration.Observe(time.Since(start).Seconds()) }()

	document, found, err := a.store.ReadArtifact(ctx, req.BundlePath)
	if err != nil {
		appliesTotal.WithLabelValues("rejected").Inc()
		return ApplyOutcome{}, fmt.Errorf("read bundle %s: %w", req.BundlePath, err)
	}
	if !found {
		appliesTotal.WithLabelValues("rejected").Inc()
		span.SetStatus(codes.Error, "bundle not found")
		return ApplyOutcome{}, fmt.Errorf("%w: %s", ErrBundleNotFound, req.BundlePath)
	}

	changes := grammar.Parse(document)
	if len(changes) == 0 {
		appliesTotal.WithLabelValues("rejected").Inc()
		a.logger.Warn("bundle contains no valid changes", "bundle", req.BundlePath)
		return ApplyOutcome{
			Success: false,
			Message: "No valid changes found in bundle",
		}, nil
	}
	span.SetAttributes(attribute.Int("changes.count", len(changes)))

	scope := sandbox.ScopeForSession(req.SessionID)

	checkpoint, err := a.store.Checkpoint(ctx)
	if err != nil {
		appliesTotal.WithLabelValues("rejected").Inc()
		return ApplyOutcome{}, fmt.Errorf("checkpoint before apply: %w", err)
	}

	applied := make([]string, 0, len(changes))
	for i, change := range changes {
		if err := a.applyChange(ctx, change, scope, req.SessionID); err != nil {
			cause := &ApplyError{ChangeIndex: i, Err: err}
			span.RecordError(cause)
			span.SetStatus(codes.Error, "apply aborted")
			if rerr := a.restore(ctx, checkpoint); rerr != nil {
				appliesTotal.WithLabelValues("rolled_back").Inc()
				return ApplyOutcome{}, fmt.Errorf("restore after abort (%v): %w", cause, rerr)
			}
			appliesTotal.WithLabelValues("rolled_back").Inc()
			a.logger.Error("bundle apply aborted, state restored",
				"bundle", req.BundlePath,
				"change_index", i,
				"path", change.Path,
				"error", err)
			return ApplyOutcome{}, cause
		}
		applied = append(applied, change.Path)
	}

	if err := a.store.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		if rerr := a.restore(ctx, checkpoint); rerr != nil {
			appliesTotal.WithLabelValues("rolled_back").Inc()
			return ApplyOutcome{}, fmt.Errorf("restore after failed commit (%v): %w", err, rerr)
		}
		appliesTotal.WithLabelValues("rolled_back").Inc()
		return ApplyOutcome{}, fmt.Errorf("commit apply: %w", err)
	}

	appliesTotal.WithLabelValues("committed").Inc()
	a.logger.Info("bundle applied",
		"bundle", req.BundlePath,
		"session", req.SessionID,
		"changes", len(changes))

	return ApplyOutcome{
		Success:        true,
		ChangesApplied: applied,
		Message:        fmt.Sprintf("Applied %d changes", len(applied)),
	}, nil
}

// applyChange executes one change, enforcing path policy and the
// operation's precondition.
func (a *Applier) applyChange(ctx context.Context, change grammar.Change, scope sandbox.Scope, sessionID string) error {
	if !sandbox.IsAllowed(change.Path, scope) {
		return &PathViolationError{Path: change.Path, SessionID: sessionID}
	}

	switch change.Op {
	case grammar.OpCreate:
		_, exists, err := a.store.ReadArtifact(ctx, change.Path)
		if err != nil {
			return fmt.Errorf("check %s before create: %w", change.Path, err)
		}
		if exists {
			return &AlreadyExistsError{Path: change.Path}
		}
		return a.store.WriteArtifact(ctx, change.Path, change.Content)

	case grammar.OpModify:
		_, exists, err := a.store.ReadArtifact(ctx, change.Path)
		if err != nil {
			return fmt.Errorf("check %s before modify: %w", change.Path, err)
		}
		if !exists {
			return &NotFoundError{Path: change.Path}
		}
		return a.store.WriteArtifact(ctx, change.Path, change.Content)

	case grammar.OpDelete:
		_, exists, err := a.store.ReadArtifact(ctx, change.Path)
		if err != nil {
			return fmt.Errorf("check %s before delete: %w", change.Path, err)
		}
		if !exists {
			// Deleting an absent file is idempotent, not an abort.
			a.logger.Warn("delete target already absent", "path", change.Path)
			return nil
		}
		return a.store.DeleteArtifact(ctx, change.Path)

	default:
		return fmt.Errorf("unsupported operation %q", change.Op)
	}
}

func (a *Applier) restore(ctx context.Context, id store.CheckpointID) error {
	restoresTotal.Inc()
	return a.store.Restore(ctx, id)
}
