// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowed_Unscoped(t *testing.T) {
	// Operator mode allows everything, including system trees.
	paths := []string{
		"/modules/api.js",
		"/docs/readme.md",
		"/system/boot.js",
		"/sessions/other/notes.txt",
		"/data/report.csv",
	}
	for _, p := range paths {
		assert.True(t, IsAllowed(p, Unscoped()), "path %s", p)
	}
}

func TestIsAllowed_Scoped(t *testing.T) {
	scope := ScopeForSession("test")

	tests := []struct {
		path string
		want bool
	}{
		{"/sessions/test/app.js", true},
		{"/sessions/test/sub/dir/file.txt", true},
		{"/modules/api.js", false},
		{"/docs/guide.md", false},
		{"/system/kernel.js", false},
		// Outside the workspace and outside the denylist: currently
		// permitted (documented policy gap).
		{"/data/shared.csv", true},
		{"/sessions/other/app.js", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAllowed(tt.path, scope), "path %s", tt.path)
	}
}

func TestScopeForSession(t *testing.T) {
	assert.False(t, ScopeForSession("").IsScoped())

	scope := ScopeForSession("abc123")
	assert.True(t, scope.IsScoped())
	assert.Equal(t, "/sessions/abc123/", scope.Prefix())
}

func TestScopedDenylistAppliesOutsideWorkspace(t *testing.T) {
	// Only the Unscoped variant bypasses the denylist entirely.
	assert.False(t, IsAllowed("/modules/api.js", Scoped("/elsewhere/")))
}

func TestIsSessionPrivate(t *testing.T) {
	assert.True(t, IsSessionPrivate("/sessions/test/scratch.txt"))
	assert.False(t, IsSessionPrivate("/data/report.csv"))
}
