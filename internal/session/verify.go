package session

import "strings"

// AnswerMatches compares a submitted answer against the stored correct one.
// Comparison trims surrounding whitespace and ignores case; nothing else.
// No accent folding, no punctuation stripping: "France" matches " france "
// and nothing looser.
func AnswerMatches(correct, submitted string) bool {
	return strings.EqualFold(
		strings.TrimSpace(correct),
		strings.TrimSpace(submitted),
	)
}
