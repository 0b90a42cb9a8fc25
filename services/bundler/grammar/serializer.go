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

import "strings"

// Serialize encodes changes into bundle text, in input order.
//
// Description:
//
//	The inverse of Parse: for any change sequence c,
//	Parse(Serialize(c, header)) yields c again, as long as no content body
//	itself contains a bare fence line (the grammar does not escape content).
//
//	The header is free-form text placed before the first block; builders
//	use it for reasons, summaries, and per-operation counts. It must not
//	contain the paws-change tag.
//
// Inputs:
//
//	changes - Change records to encode.
//	header - Free-form leading text. May be empty.
//
// Outputs:
//
//	string - The bundle document.
//
// Thread Safety: Safe for concurrent use.
func Serialize(changes []Change, header string) string {
	var sb strings.Builder

	if header != "" {
		sb.WriteString(header)
		if !strings.HasSuffix(header, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	for _, c := range changes {
		sb.WriteString(headerOpen)
		sb.WriteString("\noperation: ")
		sb.WriteString(string(c.Op))
		sb.WriteString("\nfile_path: ")
		sb.WriteString(c.Path)
		sb.WriteString("\n")
		sb.WriteString(fence)
		sb.WriteString("\n\n")

		if c.HasContent() {
			sb.WriteString(fence)
			sb.WriteString("\n")
			sb.WriteString(c.Content)
			sb.WriteString(fence)
			sb.WriteString("\n\n")
		}
	}

	return sb.String()
}
