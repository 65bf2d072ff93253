package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRegex  = regexp.MustCompile(`\$?([\d,]+(?:\.\d{2})?)`)
	nightsRegex = regexp.MustCompile(`for\s+(\d+)\s+night`)
	ratingRegex = regexp.MustCompile(`(\d\.\d{1,2})`)
	countRegex  = regexp.MustCompile(`(\d[\d,]*)\s*review`)
)

// ParsePrice extracts a per-night price from a raw string like
// "$71 for 2 nights". Returns 0 when nothing parseable is found.
func ParsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(raw, ",", "")

	matches := priceRegex.FindStringSubmatch(cleaned)
	if len(matches) < 2 {
		return 0
	}
	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0
	}

	// "for N nights" prices are totals, divide down to per-night.
	if m := nightsRegex.FindStringSubmatch(cleaned); len(m) >= 2 {
		nights, err := strconv.ParseFloat(m[1], 64)
		if err == nil && nights > 0 {
			return val / nights
		}
	}
	return val
}

// ParseRating extracts a 0-5 rating from strings like
// "4.82 out of 5 average rating". Returns nil when absent or out of range.
func ParseRating(raw string) *float64 {
	if raw == "" {
		return nil
	}
	matches := ratingRegex.FindStringSubmatch(raw)
	if len(matches) < 2 {
		return nil
	}
	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// ParseReviewCount extracts a review count from strings like "128 reviews".
func ParseReviewCount(raw string) *int {
	if raw == "" {
		return nil
	}
	matches := countRegex.FindStringSubmatch(strings.ReplaceAll(raw, ",", ""))
	if len(matches) < 2 {
		return nil
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
