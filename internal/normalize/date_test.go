package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateKnownLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2023-03-04", day(2023, time.March, 4)},
		{"2023-3-4", day(2023, time.March, 4)},
		{"15/08/2023", day(2023, time.August, 15)},
		{"5/8/2023", day(2023, time.August, 5)},
		{"12-25-2023", day(2023, time.December, 25)},
		{"25-12-2023", day(2023, time.December, 25)},
		{"2023/12/01", day(2023, time.December, 1)},
		{"  2024-02-29 ", day(2024, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDateAmbiguityFollowsLayoutOrder(t *testing.T) {
	// Slash form is day-first, dash form is month-first.
	got, ok := ParseDate("03/04/2023")
	assert.True(t, ok)
	assert.Equal(t, day(2023, time.April, 3), got)

	got, ok = ParseDate("03-04-2023")
	assert.True(t, ok)
	assert.Equal(t, day(2023, time.March, 4), got)
}

func TestParseDateFallback(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2023-03-04 10:15:00", day(2023, time.March, 4)},
		{"2023-03-04T10:15:00Z", day(2023, time.March, 4)},
		{"March 4, 2023", day(2023, time.March, 4)},
		{"04/13/2023", day(2023, time.April, 13)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateUnparseable(t *testing.T) {
	for _, raw := range []string{"", "NaN", "not a date", "2023-02-30", "31/31/2023"} {
		t.Run(raw, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := ParseDate(raw)
				assert.False(t, ok)
			})
		})
	}
}
