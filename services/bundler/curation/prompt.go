// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package curation

import (
	"errors"
	"strings"
)

var errEmptySelection = errors.New("no candidate path selected")

// buildCurationPrompt renders the single-exchange oracle request: the
// goal plus the filtered candidate paths, with the reply shape pinned to
// a JSON array so parseOracleSelection can validate it strictly.
func buildCurationPrompt(goal string, candidates []string) string {
	var sb strings.Builder
	sb.WriteString("Select the files most relevant to the following goal.\n\n")
	sb.WriteString("Goal: ")
	sb.WriteString(goal)
	sb.WriteString("\n\nCandidate files:\n")
	for _, path := range candidates {
		sb.WriteString("- ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	sb.WriteString("\nReply with a JSON array of the selected file paths, ")
	sb.WriteString("most relevant first, chosen only from the candidates. ")
	sb.WriteString("No other text.")
	return sb.String()
}
