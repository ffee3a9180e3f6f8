package internal

import (
	"strings"
	"unicode/utf8"
)

// SplitText cuts text into chunks of at most size characters, breaking on
// word boundaries, with consecutive chunks overlapping by roughly overlap
// characters so no statement is lost on a boundary.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" || size <= 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else if cut := strings.LastIndexByte(text[start:end], ' '); cut > 0 {
			end = start + cut
		} else {
			// No space in the window: cut mid-text but never mid-rune.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				end = start + size
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}
	return chunks
}
