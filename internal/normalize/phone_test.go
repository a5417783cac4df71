package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneNormalize(t *testing.T) {
	p := NewPhoneNormalizer("")

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"bare ten digits", "9876543210", "+919876543210", true},
		{"spaces and hyphens", "98765-43 210", "+919876543210", true},
		{"parentheses", "(987) 654-3210", "+919876543210", true},
		{"trunk prefix", "09876543210", "+919876543210", true},
		{"country code without plus", "919876543210", "+919876543210", true},
		{"already canonical", "+919876543210", "+919876543210", true},
		{"foreign number untouched", "+14155550123", "+14155550123", true},
		{"short local number", "5550123", "5550123", true},
		{"missing", "", "", false},
		{"null token", "NULL", "", false},
		{"letters", "call me", "", false},
		{"all zeros", "00000000000", "", false},
		{"embedded plus", "98+7654321", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"9876543210", "09876543210", "0919876543210", "919876543210",
		"+91 98765 43210", "(022) 2345-6789", "00123456789", "12345",
		"0123456789", "1234567890123", "+44 20 7946 0958", "91", "abc",
		"  ", "0-0-0-0-0-0-0-0-0-9-1", "9123456789",
	}

	for _, cc := range []string{"91", "+1", "44"} {
		p := NewPhoneNormalizer(cc)
		for _, in := range inputs {
			once, ok := p.Normalize(in)
			if !ok {
				_, again := p.Normalize(once)
				assert.False(t, again, "null output must stay null for %q", in)
				continue
			}
			twice, ok2 := p.Normalize(once)
			assert.True(t, ok2, "canonical output rejected for %q", in)
			assert.Equal(t, once, twice, "cc=%s input=%q", cc, in)
		}
	}
}

func TestNewPhoneNormalizerCountryCode(t *testing.T) {
	assert.Equal(t, "91", NewPhoneNormalizer("").CountryCode())
	assert.Equal(t, "1", NewPhoneNormalizer("+1").CountryCode())
	assert.Equal(t, "44", NewPhoneNormalizer(" 44 ").CountryCode())

	got, ok := NewPhoneNormalizer("1").Normalize("415-555-0123")
	assert.True(t, ok)
	assert.Equal(t, "+14155550123", got)
}
