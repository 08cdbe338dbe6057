// Package reconcile implements the statement reconciliation workflow: it
// normalizes and groups transaction descriptions, derives categorization
// completeness, resolves pattern matches, and detects bulk-apply
// opportunities across similar transactions.
package reconcile

import (
	"regexp"
	"strings"
)

var (
	dateTokenRegex   = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{2}-\d{2}-\d{4}\b`)
	rateNoteRegex    = regexp.MustCompile(`(?i)\(rate:\s*[0-9]+(?:[.,][0-9]+)?\)`)
	monthPhraseRegex = regexp.MustCompile(`(?i)\bfor\s+(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+\d{4}\s*$`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// Normalize strips the volatile parts of a statement description so that
// repeated occurrences of the same recurring charge produce the same key.
// Removed, in order: DD/MM/YYYY and DD-MM-YYYY date tokens, "(rate: <n>)"
// annotations, and trailing "for <Month> <Year>" phrases. Runs of whitespace
// collapse to a single space and the result is trimmed.
func Normalize(description string) string {
	if description == "" {
		return ""
	}

	s := dateTokenRegex.ReplaceAllString(description, " ")
	s = rateNoteRegex.ReplaceAllString(s, " ")
	s = monthPhraseRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
