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
	"strings"
	"testing"

	"github.com/AleutianAI/paws/services/bundler/curation"
	"github.com/AleutianAI/paws/services/bundler/grammar"
	"github.com/AleutianAI/paws/services/bundler/store"
)

func TestCatsBuilder_Build(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, map[string]string{
		"/src/app.js":   "console.log(1);\n",
		"/src/util.js":  "export const n = 2;\n",
		"/docs/read.md": "# notes\n",
	})

	b := NewCatsBuilder(st, nil, nil)
	result, err := b.Build(ctx, CatsRequest{
		Paths:           []string{"/src/app.js", "/src/util.js"},
		Reason:          "review the frontend",
		DestinationPath: "/sessions/s1/cats.md",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !result.Success || result.FilesIncluded != 2 {
		t.Fatalf("result = %+v, want success with 2 files", result)
	}

	document, found, err := st.ReadArtifact(ctx, "/sessions/s1/cats.md")
	if err != nil || !found {
		t.Fatalf("bundle artifact missing: found=%v err=%v", found, err)
	}
	if !strings.Contains(document, "# Reason: review the frontend") {
		t.Error("header missing reason")
	}

	changes := grammar.Parse(document)
	if len(changes) != 2 {
		t.Fatalf("parsed %d blocks, want 2", len(changes))
	}
	if changes[0].Path != "/src/app.js" || changes[0].Content != "console.log(1);\n" {
		t.Errorf("first block = %+v", changes[0])
	}
}

func TestCatsBuilder_SkipsMissingFiles(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, map[string]string{"/present.js": "ok\n"})

	b := NewCatsBuilder(st, nil, nil)
	result, err := b.Build(ctx, CatsRequest{
		Paths:           []string{"/present.js", "/absent.js", "/also-absent.js"},
		DestinationPath: "/out/cats.md",
	})
	if err != nil {
		t.Fatalf("Build() error = %v (partial failure must not be fatal)", err)
	}
	if result.FilesIncluded != 1 {
		t.Errorf("FilesIncluded = %d, want 1", result.FilesIncluded)
	}
}

func TestCatsBuilder_EmptyPathList(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	b := NewCatsBuilder(st, nil, nil)
	result, err := b.Build(ctx, CatsRequest{
		Paths:           []string{},
		DestinationPath: "/out/cats.md",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.FilesIncluded != 0 {
		t.Errorf("FilesIncluded = %d, want 0", result.FilesIncluded)
	}

	document, found, _ := st.ReadArtifact(ctx, "/out/cats.md")
	if !found {
		t.Fatal("empty bundle artifact not written")
	}
	if got := grammar.Parse(document); len(got) != 0 {
		t.Errorf("empty bundle parsed to %d blocks", len(got))
	}
}

func TestCatsBuilder_RequiresDestination(t *testing.T) {
	b := NewCatsBuilder(store.NewMemoryStore(), nil, nil)
	_, err := b.Build(context.Background(), CatsRequest{Paths: []string{"/a"}})
	if err != ErrNoDestination {
		t.Errorf("Build() error = %v, want ErrNoDestination", err)
	}
}

func TestCatsBuilder_CuratedSelection(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, map[string]string{
		"/data/a.csv":            "a\n",
		"/data/b.csv":            "b\n",
		"/sessions/s1/private":   "secret\n",
		"/sessions/s1/more.priv": "secret\n",
	})

	// No oracle configured: curation takes its deterministic fallback,
	// which excludes the session tree.
	b := NewCatsBuilder(st, curation.NewCurator(nil), nil)
	result, err := b.Build(ctx, CatsRequest{
		Reason:          "summarize the data",
		DestinationPath: "/sessions/s1/cats.md",
		UseCuration:     true,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.FilesIncluded != 2 {
		t.Fatalf("FilesIncluded = %d, want 2 (session tree excluded)", result.FilesIncluded)
	}

	document, _, _ := st.ReadArtifact(ctx, "/sessions/s1/cats.md")
	if strings.Contains(document, "secret") {
		t.Error("session-private content leaked into curated bundle")
	}
}

func seed(t *testing.T, st store.ArtifactStore, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := st.WriteArtifact(context.Background(), path, content); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
}
