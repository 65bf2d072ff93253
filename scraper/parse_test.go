package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain dollar amount", "$85", 85},
		{"with decimals", "$129.50", 129.50},
		{"thousands separator", "$1,200", 1200},
		{"total over nights", "$71 for 2 nights", 35.5},
		{"total over many nights", "$450 for 5 nights", 90},
		{"no currency symbol", "120 per night", 120},
		{"empty string", "", 0},
		{"no digits", "price unavailable", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParsePrice(tt.raw), 1e-9)
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{"rating with context", "4.82 out of 5 average rating", ptr(4.82)},
		{"bare rating", "4.9", ptr(4.9)},
		{"out of range", "9.9 out of 10", nil},
		{"empty", "", nil},
		{"no rating present", "New listing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRating(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseReviewCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{"plural", "128 reviews", intPtr(128)},
		{"singular", "1 review", intPtr(1)},
		{"thousands separator", "1,024 reviews", intPtr(1024)},
		{"empty", "", nil},
		{"no count", "No reviews yet", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReviewCount(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func ptr(f float64) *float64 { return &f }
func intPtr(n int) *int      { return &n }
