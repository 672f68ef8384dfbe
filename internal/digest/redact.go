// Package digest builds the week-over-week view: deltas against the prior
// snapshot and a small set of redacted example conversations per manager.
package digest

import (
	"regexp"
	"strings"
)

const redactMaxLen = 220

var (
	reURL        = regexp.MustCompile(`(?i)https?://\S+`)
	reEmail      = regexp.MustCompile(`(?i)\b[\w.\-+]+@[\w.\-]+\.\w+\b`)
	reLongDigits = regexp.MustCompile(`\b\d{5,}\b`)
	rePhone      = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}`)
)

// RedactText masks links, emails, phone numbers and long digit runs, folds
// newlines and caps the result, so snippets are safe to publish.
func RedactText(s string) string {
	s = reURL.ReplaceAllString(s, "[link]")
	s = reEmail.ReplaceAllString(s, "[email]")
	s = reLongDigits.ReplaceAllString(s, "***")
	s = rePhone.ReplaceAllString(s, "***")
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) > redactMaxLen {
		s = TruncateUTF8(s, redactMaxLen)
	}
	return s
}

// TruncateUTF8 cuts at a rune boundary at or below max bytes.
func TruncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for i := max; i > 0; i-- {
		if (s[i] & 0xC0) != 0x80 {
			return s[:i]
		}
	}
	return ""
}
