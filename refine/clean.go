// Copyright 2025 Veldt Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package refine

import "strings"

// Labels small instruct models like to prepend despite the prompt.
var responsePrefixes = []string{
	"search query:",
	"search terms:",
	"query:",
	"keywords:",
	"answer:",
}

// cleanResponse reduces raw generator output to a single usable query
// line: first non-empty line, label prefixes and surrounding quotes
// stripped, repeated words removed, capped at a word boundary.
func cleanResponse(raw string) string {
	var line string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if line == "" {
		return ""
	}

	lower := strings.ToLower(line)
	for _, prefix := range responsePrefixes {
		if strings.HasPrefix(lower, prefix) {
			line = strings.TrimSpace(line[len(prefix):])
			break
		}
	}
	line = strings.Trim(line, `"'`+"`")
	line = strings.TrimSpace(line)

	line = dedupeWords(line)

	if len(line) > maxRefinedLen {
		cut := maxRefinedLen
		if idx := strings.LastIndexByte(line[:cut], ' '); idx > 0 {
			cut = idx
		}
		line = strings.TrimSpace(line[:cut])
	}

	return line
}

// dedupeWords removes repeated words case-insensitively, keeping the first
// occurrence and its casing.
func dedupeWords(line string) string {
	words := strings.Fields(line)
	seen := make(map[string]bool, len(words))
	kept := words[:0]
	for _, word := range words {
		key := strings.ToLower(word)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
