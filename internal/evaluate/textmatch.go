package evaluate

import "strings"

// normalizeText trims, lowercases and collapses internal whitespace so that
// trivial formatting differences never fail a text answer.
func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
