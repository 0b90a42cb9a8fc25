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
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/paws/services/bundler/grammar"
)

func TestManifestToChanges(t *testing.T) {
	raw := `
summary: rework the importer
changes:
  - operation: CREATE
    file_path: /src/new.js
    content: |
      export {};
  - operation: MODIFY
    file_path: /src/app.js
    content: "console.log(2);\n"
  - operation: DELETE
    file_path: /src/old.js
`
	var manifest changeManifest
	if err := yaml.Unmarshal([]byte(raw), &manifest); err != nil {
		t.Fatalf("yaml.Unmarshal() = %v", err)
	}

	changes, err := manifestToChanges(manifest)
	if err != nil {
		t.Fatalf("manifestToChanges() = %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3", len(changes))
	}
	if changes[0].Op != grammar.OpCreate || changes[0].Content != "export {};\n" {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[2].Op != grammar.OpDelete || changes[2].HasContent() {
		t.Errorf("delete change = %+v", changes[2])
	}
}

func TestManifestToChanges_ContentFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(src, []byte("from disk\n"), 0644); err != nil {
		t.Fatal(err)
	}

	manifest := changeManifest{Changes: []manifestChange{
		{Operation: "CREATE", FilePath: "/x", ContentFile: src},
	}}
	changes, err := manifestToChanges(manifest)
	if err != nil {
		t.Fatalf("manifestToChanges() = %v", err)
	}
	if changes[0].Content != "from disk\n" {
		t.Errorf("content = %q", changes[0].Content)
	}
}

func TestManifestToChanges_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		change manifestChange
	}{
		{"unknown operation", manifestChange{Operation: "RENAME", FilePath: "/x"}},
		{"missing path", manifestChange{Operation: "CREATE", Content: "x"}},
		{"delete with content", manifestChange{Operation: "DELETE", FilePath: "/x", Content: "x"}},
		{"both content sources", manifestChange{Operation: "CREATE", FilePath: "/x", Content: "a", ContentFile: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifestToChanges(changeManifest{Changes: []manifestChange{tt.change}})
			if err == nil {
				t.Error("invalid manifest accepted")
			}
		})
	}
}
