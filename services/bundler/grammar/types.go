// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package grammar defines the paws-change bundle wire format.
//
// A bundle is UTF-8 text containing zero or more change blocks. Each block
// is a fenced header tagged "paws-change" carrying an operation and a file
// path, optionally followed by a second fenced segment with the raw file
// content:
//
//	```paws-change
//	operation: CREATE
//	file_path: /sessions/demo/hello.js
//	```
//
//	```
//	console.log("hello");
//	```
//
// CREATE and MODIFY blocks carry a content segment; DELETE blocks do not.
// Everything between the content fence pair is treated as literal bytes,
// with no escaping. Free-form text outside the fenced blocks (summaries,
// reasons, per-operation counts) is ignored by the parser, which makes the
// same grammar usable for both Cats bundles (snapshot dumps for review) and
// Dogs bundles (change proposals for the transactional applier).
package grammar

// HeaderTag marks the opening fence of a change block.
const HeaderTag = "paws-change"

// Operation identifies what a change does to its target path.
type Operation string

const (
	// OpCreate creates a new artifact. The target must not already exist.
	OpCreate Operation = "CREATE"

	// OpModify overwrites an existing artifact. The target must exist.
	OpModify Operation = "MODIFY"

	// OpDelete removes the target artifact.
	OpDelete Operation = "DELETE"
)

// ParseOperation maps a header value to an Operation.
//
// Outputs:
//
//	Operation - The recognized operation (zero value if unrecognized).
//	bool - True if the value is one of CREATE, MODIFY, DELETE.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(s) {
	case OpCreate, OpModify, OpDelete:
		return Operation(s), true
	default:
		return "", false
	}
}

// Change is one parsed change record.
//
// Content is always empty for OpDelete and carries the full new file body
// for OpCreate and OpModify. Construct changes through NewCreate, NewModify,
// and NewDelete so that invariant holds everywhere a Change travels.
type Change struct {
	Op      Operation
	Path    string
	Content string
}

// NewCreate returns a CREATE change carrying the new file content.
func NewCreate(path, content string) Change {
	return Change{Op: OpCreate, Path: path, Content: content}
}

// NewModify returns a MODIFY change carrying the replacement content.
func NewModify(path, content string) Change {
	return Change{Op: OpModify, Path: path, Content: content}
}

// NewDelete returns a DELETE change. Deletes never carry content.
func NewDelete(path string) Change {
	return Change{Op: OpDelete, Path: path}
}

// HasContent reports whether this operation carries a content segment.
func (c Change) HasContent() bool {
	return c.Op == OpCreate || c.Op == OpModify
}
