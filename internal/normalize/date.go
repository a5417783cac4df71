//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
)

// DateLayouts are tried in order before the permissive fallback. Order
// decides ambiguous inputs: "03/04/2023" is 3 April (day-first slash form),
// while "03-04-2023" is 4 March (month-first dash form).
var DateLayouts = []string{
	"2006-1-2", // ISO
	"2/1/2006", // day/month/year
	"1-2-2006", // month-day-year
	"2-1-2006", // day-month-year
	"2006/1/2", // slash ISO
}

// ParseDate parses a calendar date. It never fails loudly: unparseable and
// missing input both return false.
func ParseDate(raw string) (time.Time, bool) {
	if model.IsMissing(raw) {
		return time.Time{}, false
	}
	s := strings.TrimSpace(raw)

	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return DateOnly(t), true
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
