//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package normalize holds the scalar field normalizers: phone numbers,
// calendar dates and free text.
package normalize

import (
	"regexp"
	"strings"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
)

// DefaultCountryCode is prepended to bare 10-digit national numbers.
const DefaultCountryCode = "91"

var (
	phoneSeparators = strings.NewReplacer("-", "", "(", "", ")", "")
	canonicalPhone  = regexp.MustCompile(`^\+?[0-9]{4,15}$`)
)

// PhoneNormalizer canonicalizes phone numbers towards an E.164-like form.
type PhoneNormalizer struct {
	countryCode string
}

// NewPhoneNormalizer creates a normalizer for the given country calling
// code, with or without a leading "+". An empty code selects
// DefaultCountryCode.
func NewPhoneNormalizer(countryCode string) PhoneNormalizer {
	cc := strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if cc == "" {
		cc = DefaultCountryCode
	}
	return PhoneNormalizer{countryCode: cc}
}

// CountryCode returns the calling code without the "+".
func (p PhoneNormalizer) CountryCode() string {
	return p.countryCode
}

// Normalize returns the canonical form of raw and true, or false when raw is
// missing or does not reduce to an optional "+" followed by digits.
//
// Rules, applied in order: drop whitespace, hyphens and parentheses; strip
// leading zeros from values of 11 or more characters (trunk prefix); prefix
// "+" when the value starts with the country code; prefix "+<code>" when
// exactly 10 characters remain. Normalize(Normalize(x)) == Normalize(x).
func (p PhoneNormalizer) Normalize(raw string) (string, bool) {
	if model.IsMissing(raw) {
		return "", false
	}

	s := strings.Join(strings.Fields(raw), "")
	s = phoneSeparators.Replace(s)

	if strings.HasPrefix(s, "0") && len(s) >= 11 {
		s = strings.TrimLeft(s, "0")
	}
	if !strings.HasPrefix(s, "+") && strings.HasPrefix(s, p.countryCode) {
		s = "+" + s
	}
	if !strings.HasPrefix(s, "+") && len(s) == 10 {
		s = "+" + p.countryCode + s
	}

	if !canonicalPhone.MatchString(s) {
		return "", false
	}
	return s, true
}
