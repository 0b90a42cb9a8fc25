// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package curation selects a relevant file subset for a bundling goal by
// asking an external language model, with a deterministic fallback when
// the oracle misbehaves. Curation never fails: the worst outcome is a
// heuristic selection and a logged warning.
package curation

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/paws/services/bundler/sandbox"
	"github.com/AleutianAI/paws/services/bundler/store"
	"github.com/AleutianAI/paws/services/llm"
)

// DefaultMaxFiles bounds the heuristic fallback selection.
const DefaultMaxFiles = 10

// Curator wraps the external oracle call used to pick relevant files when
// a caller does not supply an explicit list.
//
// # Thread Safety
//
// Safe for concurrent use; the curator holds no mutable state.
type Curator struct {
	client   llm.LLMClient
	maxFiles int
	logger   *slog.Logger
}

// Option configures a Curator.
type Option func(*Curator)

// WithMaxFiles overrides the fallback selection bound.
func WithMaxFiles(n int) Option {
	return func(c *Curator) {
		if n > 0 {
			c.maxFiles = n
		}
	}
}

// WithLogger sets the curator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Curator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCurator creates a curator backed by the given LLM client.
//
// Inputs:
//
//	client - The oracle backend. May be nil, in which case every Curate
//	         call takes the heuristic fallback.
//	opts - Optional configuration.
//
// Outputs:
//
//	*Curator - Ready-to-use curator.
func NewCurator(client llm.LLMClient, opts ...Option) *Curator {
	c := &Curator{
		client:   client,
		maxFiles: DefaultMaxFiles,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Curate returns an ordered list of paths relevant to the goal.
//
// Description:
//
//	Paths under the per-session tree are filtered out before the prompt
//	is built, so session-scratch paths never leak into the oracle's
//	input or output. One request goes to the language model; the reply
//	is expected to be a JSON array of candidate paths. On transport
//	failure, a malformed reply, or a reply selecting nothing from the
//	candidate set, Curate logs the failure and falls back to a
//	deterministic heuristic: most-recently-touched first, ties broken
//	lexicographically, capped at the configured bound.
//
//	There is no retry loop, and Curate never returns an error.
//
// Inputs:
//
//	ctx - Context for cancellation of the oracle call.
//	goal - The bundling goal, e.g. the Cats request reason.
//	index - Full artifact-metadata listing from the store.
//
// Outputs:
//
//	[]string - Selected paths, oracle order (or heuristic order on
//	           fallback). Empty when the store holds no eligible files.
//
// Thread Safety: Safe for concurrent use.
func (c *Curator) Curate(ctx context.Context, goal string, index map[string]store.ArtifactMetadata) []string {
	eligible := eligibleCandidates(index)
	if len(eligible) == 0 {
		return nil
	}

	curationRequests.Inc()

	if c.client == nil {
		return c.fallback(eligible, index, "no oracle configured")
	}

	prompt := buildCurationPrompt(goal, eligible)
	raw, err := c.client.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		return c.fallback(eligible, index, "oracle call failed: "+err.Error())
	}

	selected, err := parseOracleSelection(raw, eligible)
	if err != nil {
		return c.fallback(eligible, index, "oracle reply rejected: "+err.Error())
	}
	return selected
}

// fallback is the deterministic selection used when the oracle cannot be
// consulted or its reply is unusable.
func (c *Curator) fallback(eligible []string, index map[string]store.ArtifactMetadata, reason string) []string {
	c.logger.Warn("curation falling back to heuristic selection", "reason", reason)
	curationFallbacks.Inc()

	ranked := make([]string, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := index[ranked[i]].UpdatedAt, index[ranked[j]].UpdatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > c.maxFiles {
		ranked = ranked[:c.maxFiles]
	}
	return ranked
}

// eligibleCandidates returns the sorted candidate paths with the
// session-private tree removed.
func eligibleCandidates(index map[string]store.ArtifactMetadata) []string {
	eligible := make([]string, 0, len(index))
	for path := range index {
		if sandbox.IsSessionPrivate(path) {
			continue
		}
		eligible = append(eligible, path)
	}
	sort.Strings(eligible)
	return eligible
}

// parseOracleSelection decodes the oracle reply as a JSON list of paths
// and intersects it with the candidate set, preserving reply order.
// A reply that selects no known candidate is a shape violation.
func parseOracleSelection(raw string, eligible []string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)

	// Models often wrap JSON in a markdown fence despite instructions.
	if after, ok := strings.CutPrefix(trimmed, "```json"); ok {
		trimmed = after
	} else if after, ok := strings.CutPrefix(trimmed, "```"); ok {
		trimmed = after
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)

	var paths []string
	if err := json.Unmarshal([]byte(trimmed), &paths); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(eligible))
	for _, p := range eligible {
		known[p] = true
	}

	var selected []string
	seen := make(map[string]bool)
	for _, p := range paths {
		if known[p] && !seen[p] {
			selected = append(selected, p)
			seen[p] = true
		}
	}
	if len(selected) == 0 {
		return nil, errEmptySelection
	}
	return selected, nil
}
