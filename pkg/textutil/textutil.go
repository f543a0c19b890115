package textutil

import (
	"strings"
)

// CountWords splits on whitespace, the same way the summary threshold is measured.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// StripHTML drops markup tags and collapses whitespace.
func StripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ChunkWords groups words into chunks of at most maxLen bytes.
// A single word longer than maxLen becomes its own chunk.
func ChunkWords(text string, maxLen int) []string {
	var chunks []string
	var cur strings.Builder
	for _, w := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(w) > maxLen {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
