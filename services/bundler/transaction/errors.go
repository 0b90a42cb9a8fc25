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
	"errors"
	"fmt"
)

// ErrBundleNotFound is returned when the requested bundle artifact does
// not exist. No checkpoint is taken in that case.
var ErrBundleNotFound = errors.New("bundle not found")

// PathViolationError reports a change whose target path is outside the
// session workspace and inside a protected tree.
type PathViolationError struct {
	Path      string
	SessionID string
}

func (e *PathViolationError) Error() string {
	return fmt.Sprintf("path %s violates session workspace constraints (session %s)", e.Path, e.SessionID)
}

// AlreadyExistsError reports a CREATE whose target already exists.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("cannot create %s: file already exists", e.Path)
}

// NotFoundError reports a MODIFY whose target does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot modify %s: file not found", e.Path)
}

// ApplyError wraps a per-change failure with the index of the change
// that triggered the abort. The session state has already been restored
// when an ApplyError is returned.
type ApplyError struct {
	// ChangeIndex is the zero-based position of the failing change.
	ChangeIndex int
	Err         error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply aborted at change %d: %v", e.ChangeIndex, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
