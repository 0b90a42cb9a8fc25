// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sandbox decides which artifact paths a transaction may touch.
//
// The policy is a pure, total predicate over (path, scope). A scoped
// transaction is confined to its session workspace plus any path outside
// the system denylist; an unscoped transaction (operator mode) may touch
// anything. The applier evaluates the predicate before every mutating
// operation and never caches a positive result, since the denylist may
// change between calls.
package sandbox

import "strings"

// SessionRoot is the tree holding per-session workspaces. Paths under it
// are private to their session and are excluded from curation input.
const SessionRoot = "/sessions/"

// systemPrefixes are privileged trees a scoped transaction may never touch
// outside its own workspace. Kept as a variable so a deny-by-default
// hardening is a one-line change.
var systemPrefixes = []string{
	"/modules/",
	"/docs/",
	"/system/",
}

// Scope restricts a transaction to a path-prefix workspace.
//
// Operator mode (no restriction) is the explicit Unscoped variant rather
// than an empty-prefix convention, so callers can never conflate "no
// session" with "session with an empty prefix".
type Scope struct {
	scoped bool
	prefix string
}

// Unscoped returns the operator-mode scope: every path is allowed.
func Unscoped() Scope {
	return Scope{}
}

// Scoped returns a scope confined to the given path prefix.
func Scoped(prefix string) Scope {
	return Scope{scoped: true, prefix: prefix}
}

// ScopeForSession derives the workspace scope for a session identifier.
// An empty session ID means operator mode.
func ScopeForSession(sessionID string) Scope {
	if sessionID == "" {
		return Unscoped()
	}
	return Scoped(SessionRoot + sessionID + "/")
}

// IsScoped reports whether this scope restricts paths at all.
func (s Scope) IsScoped() bool {
	return s.scoped
}

// Prefix returns the workspace prefix, or "" for the unscoped variant.
func (s Scope) Prefix() string {
	return s.prefix
}

// IsAllowed reports whether a path may be touched under the given scope.
//
// Description:
//
//	Unscoped: always allowed. Scoped: allowed inside the workspace prefix,
//	denied under any system prefix, and otherwise allowed. The permissive
//	fallback for paths that are neither in the workspace nor in the
//	denylist is intentional for now; see systemPrefixes.
//
// Thread Safety: Safe for concurrent use.
func IsAllowed(path string, scope Scope) bool {
	if !scope.scoped {
		return true
	}
	if strings.HasPrefix(path, scope.prefix) {
		return true
	}
	for _, denied := range systemPrefixes {
		if strings.HasPrefix(path, denied) {
			return false
		}
	}
	return true
}

// IsSessionPrivate reports whether a path lives under the per-session tree.
// Curation filters these out before building oracle prompts.
func IsSessionPrivate(path string) bool {
	return strings.HasPrefix(path, SessionRoot)
}
