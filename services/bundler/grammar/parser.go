// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package grammar

import (
	"log/slog"
	"strings"
)

const (
	fence      = "```"
	headerOpen = fence + HeaderTag
)

// Parse decodes bundle text into an ordered sequence of change records.
//
// Description:
//
//	Scans the text for paws-change header blocks and extracts one Change
//	per well-formed block. Parsing is best-effort, not fail-fast: a block
//	with a missing or unrecognized operation or file_path is skipped with
//	a logged warning, and parsing continues at the next block. Empty input
//	and input with no paws-change tag both yield an empty slice; neither
//	is an error.
//
//	Parse is a pure text-to-structure transform. It never touches the
//	artifact store, has no side effects beyond log output, and is
//	idempotent.
//
// Inputs:
//
//	bundleText - The raw bundle document.
//
// Outputs:
//
//	[]Change - Parsed changes in document order. Empty, never nil-unsafe.
//
// Thread Safety: Safe for concurrent use.
func Parse(bundleText string) []Change {
	var changes []Change

	rest := bundleText
	for {
		start := strings.Index(rest, headerOpen)
		if start < 0 {
			break
		}

		headerStart := start + len(headerOpen)
		headerEnd := strings.Index(rest[headerStart:], fence)
		if headerEnd < 0 {
			// Unterminated header fence. Nothing after this can be a
			// well-formed block.
			slog.Warn("skipping unterminated paws-change header")
			break
		}

		header := rest[headerStart : headerStart+headerEnd]
		rest = rest[headerStart+headerEnd+len(fence):]

		opValue, path := parseHeaderFields(header)
		op, ok := ParseOperation(opValue)
		if !ok || path == "" {
			slog.Warn("skipping malformed paws-change block",
				"operation", opValue,
				"file_path", path)
			continue
		}

		if op == OpDelete {
			changes = append(changes, NewDelete(path))
			continue
		}

		// CREATE and MODIFY consume the immediately following fenced
		// segment as literal content, trailing newline preserved.
		content, remaining, ok := parseContentSegment(rest)
		if !ok {
			slog.Warn("skipping paws-change block with missing content segment",
				"operation", string(op),
				"file_path", path)
			continue
		}
		rest = remaining

		switch op {
		case OpCreate:
			changes = append(changes, NewCreate(path, content))
		case OpModify:
			changes = append(changes, NewModify(path, content))
		}
	}

	return changes
}

// parseHeaderFields extracts the operation and file_path key-value lines
// from a header segment. Unknown lines are ignored.
func parseHeaderFields(header string) (operation, path string) {
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "operation:"); ok {
			operation = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "file_path:"); ok {
			path = strings.TrimSpace(value)
		}
	}
	return operation, path
}

// parseContentSegment captures the next fenced segment as raw content.
//
// The segment opens at the first bare fence after the header and runs to
// the next fence. Everything in between is literal bytes: no trimming, no
// escaping, trailing newline kept exactly as written. Returns false if no
// complete fence pair follows.
func parseContentSegment(text string) (content, remaining string, ok bool) {
	open := strings.Index(text, fence+"\n")
	if open < 0 {
		return "", text, false
	}

	// A paws-change header here means the expected content segment is
	// missing and we are looking at the next block instead.
	if next := strings.Index(text, headerOpen); next >= 0 && next <= open {
		return "", text, false
	}

	bodyStart := open + len(fence) + 1
	bodyEnd := strings.Index(text[bodyStart:], fence)
	if bodyEnd < 0 {
		return "", text, false
	}

	content = text[bodyStart : bodyStart+bodyEnd]
	remaining = text[bodyStart+bodyEnd+len(fence):]
	return content, remaining, true
}
