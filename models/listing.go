package models

import "strings"

// Listing represents a single accommodation result produced by a backend's
// search step. A listing may be enriched once by merging a ListingDetail
// fetched from the same URL; it is not mutated after that.
type Listing struct {
	Title         string   `json:"title"`
	PricePerNight float64  `json:"price_per_night"` // 0 means unparsed/invalid
	Currency      string   `json:"currency"`
	Rating        *float64 `json:"rating,omitempty"`       // 0-5
	ReviewCount   *int     `json:"review_count,omitempty"` // non-negative
	ReviewSummary string   `json:"review_summary,omitempty"`
	URL           string   `json:"url"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// Review is a single guest review carried on a ListingDetail.
type Review struct {
	Text   string   `json:"text"`
	Author string   `json:"author"`
	Date   string   `json:"date"`
	Rating *float64 `json:"rating,omitempty"`
}

// ListingDetail is the detail-page superset of a Listing. It exists only
// during enrichment and is discarded after MergeDetail.
type ListingDetail struct {
	Listing
	Description string   `json:"description,omitempty"`
	Reviews     []Review `json:"reviews,omitempty"`
}

// Key returns the listing's deduplication identity: the URL when present,
// else the lowercased trimmed title, else "unknown".
func (l *Listing) Key() string {
	if u := strings.TrimSpace(l.URL); u != "" {
		return u
	}
	if t := strings.ToLower(strings.TrimSpace(l.Title)); t != "" {
		return t
	}
	return "unknown"
}

// Valid reports whether the listing carries a usable per-night price.
func (l *Listing) Valid() bool {
	return l.PricePerNight > 0
}

// MergeDetail fills gaps on the listing from its detail page. Fields the
// search card already populated win over detail-page values.
func (l *Listing) MergeDetail(d *ListingDetail) {
	if d == nil {
		return
	}
	if l.Title == "" {
		l.Title = d.Title
	}
	if l.PricePerNight == 0 && d.PricePerNight > 0 {
		l.PricePerNight = d.PricePerNight
	}
	if l.Currency == "" {
		l.Currency = d.Currency
	}
	if l.Rating == nil && d.Rating != nil {
		l.Rating = d.Rating
	}
	if l.ReviewCount == nil {
		if d.ReviewCount != nil {
			l.ReviewCount = d.ReviewCount
		} else if n := len(d.Reviews); n > 0 {
			l.ReviewCount = &n
		}
	}
	if l.ImageURL == "" {
		l.ImageURL = d.ImageURL
	}
}
