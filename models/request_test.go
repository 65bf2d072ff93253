package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestRequestNormalize(t *testing.T) {
	r := SearchRequest{Location: "Tokyo"}
	r.Normalize()
	assert.Equal(t, DefaultGuests, r.Guests)
	assert.Equal(t, DefaultCurrency, r.Currency)

	r = SearchRequest{Location: "Tokyo", Guests: 4, Currency: "EUR"}
	r.Normalize()
	assert.Equal(t, 4, r.Guests)
	assert.Equal(t, "EUR", r.Currency)
}

func TestRequestValidate(t *testing.T) {
	valid := func() SearchRequest {
		return SearchRequest{
			Location: "Tokyo",
			CheckIn:  date(2026, 3, 1),
			CheckOut: date(2026, 3, 5),
			Guests:   2,
			Currency: "USD",
		}
	}
	neg := -5.0
	hundred := 100.0
	fifty := 50.0

	tests := []struct {
		name    string
		mutate  func(*SearchRequest)
		wantErr string
	}{
		{"valid", func(r *SearchRequest) {}, ""},
		{"missing location", func(r *SearchRequest) { r.Location = "" }, "location is required"},
		{"missing dates", func(r *SearchRequest) { r.CheckIn = time.Time{} }, "dates are required"},
		{"checkout before checkin", func(r *SearchRequest) { r.CheckOut = date(2026, 2, 27) }, "must be after"},
		{"zero nights", func(r *SearchRequest) { r.CheckOut = r.CheckIn }, "must be after"},
		{"non-positive guests", func(r *SearchRequest) { r.Guests = 0 }, "guests must be positive"},
		{"negative budget min", func(r *SearchRequest) { r.BudgetMin = &neg }, "budget min must be non-negative"},
		{"min above max", func(r *SearchRequest) { r.BudgetMin = &hundred; r.BudgetMax = &fifty }, "exceeds budget max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequestNights(t *testing.T) {
	r := SearchRequest{CheckIn: date(2026, 3, 1), CheckOut: date(2026, 3, 5)}
	assert.Equal(t, 4, r.Nights())
}

func TestListingKey(t *testing.T) {
	assert.Equal(t, "https://example.com/rooms/1",
		(&Listing{Title: "Loft", URL: "https://example.com/rooms/1"}).Key())
	assert.Equal(t, "cozy loft", (&Listing{Title: "  Cozy Loft "}).Key())
	assert.Equal(t, "unknown", (&Listing{}).Key())
}

func TestListingMergeDetailCardFieldsWin(t *testing.T) {
	rating := 4.8
	l := &Listing{Title: "Card title", PricePerNight: 120, Currency: "USD"}
	l.MergeDetail(&ListingDetail{
		Listing: Listing{Title: "Detail title", PricePerNight: 999, Currency: "EUR", Rating: &rating},
		Reviews: []Review{{Text: "Nice."}, {Text: "Great."}},
	})

	assert.Equal(t, "Card title", l.Title)
	assert.Equal(t, 120.0, l.PricePerNight)
	assert.Equal(t, "USD", l.Currency)
	require.NotNil(t, l.Rating, "gaps are filled from the detail page")
	assert.Equal(t, 4.8, *l.Rating)
	require.NotNil(t, l.ReviewCount)
	assert.Equal(t, 2, *l.ReviewCount)
}

func TestListingMergeDetailNilIsNoop(t *testing.T) {
	l := &Listing{Title: "Card title"}
	l.MergeDetail(nil)
	assert.Equal(t, "Card title", l.Title)
}
