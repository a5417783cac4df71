package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Text trims leading and trailing whitespace.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// TitleCase collapses inner whitespace and title-cases each word, so
// "  new   DELHI " becomes "New Delhi".
func TitleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers keep state, so one per call.
	return cases.Title(language.English).String(s)
}
