package answer

import "strings"

// Normalize strips markdown emphasis markers (** and *) and surrounding whitespace.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	return strings.TrimSpace(text)
}
