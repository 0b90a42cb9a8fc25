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

	"github.com/AleutianAI/paws/services/bundler/curation"
	"github.com/AleutianAI/paws/services/bundler/store"
	"github.com/AleutianAI/paws/services/llm"
)

// openStore builds the configured artifact store. The returned closer
// must be called before process exit; for the memory backend it is a
// no-op.
func openStore() (store.ArtifactStore, func() error, error) {
	switch config.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), func() error { return nil }, nil
	case "badger":
		bs, err := store.OpenBadgerStore(store.BadgerConfig{
			Path:       expandStorePath(config.Store.Path),
			SyncWrites: config.Store.SyncWrites,
			Logger:     logger.Slog(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return bs, bs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}
}

// newCurator builds the configured curator. A "none" backend or a
// failed client initialization yields a curator that always uses the
// deterministic fallback.
func newCurator() *curation.Curator {
	var client llm.LLMClient

	switch config.Curation.Backend {
	case "openai":
		c, err := llm.NewOpenAIClient()
		if err != nil {
			logger.Warn("OpenAI client unavailable, curation will use the fallback", "error", err)
		} else {
			client = c
		}
	case "ollama":
		c, err := llm.NewOllamaClient()
		if err != nil {
			logger.Warn("Ollama client unavailable, curation will use the fallback", "error", err)
		} else {
			client = c
		}
	}

	opts := []curation.Option{curation.WithLogger(logger.Slog())}
	if config.Curation.MaxFiles > 0 {
		opts = append(opts, curation.WithMaxFiles(config.Curation.MaxFiles))
	}
	return curation.NewCurator(client, opts...)
}

// expandStorePath expands a leading ~ in the badger path.
func expandStorePath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

// fatal logs the error and exits nonzero.
func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
