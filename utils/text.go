package utils

import "strings"

// CountWords counts whitespace-delimited, non-empty tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
