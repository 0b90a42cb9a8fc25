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
	"reflect"
	"strings"
	"testing"

	"github.com/AleutianAI/paws/services/bundler/grammar"
	"github.com/AleutianAI/paws/services/bundler/store"
)

func TestDogsBuilder_Build(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	changes := []grammar.Change{
		grammar.NewCreate("/src/new.js", "export {};\n"),
		grammar.NewCreate("/src/other.js", "export {};\n"),
		grammar.NewModify("/src/app.js", "console.log(2);\n"),
		grammar.NewDelete("/src/old.js"),
	}

	b := NewDogsBuilder(st, nil)
	result, err := b.Build(ctx, DogsRequest{
		Changes:         changes,
		DestinationPath: "/sessions/s1/dogs.md",
		Summary:         "refactor the frontend",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !result.Success || result.ChangesCount != 4 {
		t.Fatalf("result = %+v, want success with 4 changes", result)
	}

	document, found, err := st.ReadArtifact(ctx, "/sessions/s1/dogs.md")
	if err != nil || !found {
		t.Fatalf("bundle artifact missing: found=%v err=%v", found, err)
	}
	if !strings.Contains(document, "Create: 2, Modify: 1, Delete: 1") {
		t.Errorf("header missing operation counts:\n%s", document)
	}
	if !strings.Contains(document, "# Summary: refactor the frontend") {
		t.Error("header missing summary")
	}

	if got := grammar.Parse(document); !reflect.DeepEqual(got, changes) {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", got, changes)
	}
}

func TestDogsBuilder_EmptyChangeList(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	b := NewDogsBuilder(st, nil)
	result, err := b.Build(ctx, DogsRequest{DestinationPath: "/out/dogs.md"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if result.ChangesCount != 0 {
		t.Errorf("ChangesCount = %d, want 0", result.ChangesCount)
	}

	document, found, _ := st.ReadArtifact(ctx, "/out/dogs.md")
	if !found {
		t.Fatal("empty bundle artifact not written")
	}
	if !strings.Contains(document, "Create: 0, Modify: 0, Delete: 0") {
		t.Error("header missing zero counts")
	}
}

func TestDogsBuilder_RequiresDestination(t *testing.T) {
	b := NewDogsBuilder(store.NewMemoryStore(), nil)
	_, err := b.Build(context.Background(), DogsRequest{
		Changes: []grammar.Change{grammar.NewDelete("/x")},
	})
	if err != ErrNoDestination {
		t.Errorf("Build() error = %v, want ErrNoDestination", err)
	}
}
