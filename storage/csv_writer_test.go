package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"staysearch/models"
	"staysearch/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterSaveListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.csv")
	w := NewCSVWriter(path, utils.NewTestLogger())

	rating := 4.85
	count := 128
	ctx := models.SearchContext{Location: "Tokyo", CheckIn: "2026-03-01", CheckOut: "2026-03-05"}
	listings := []*models.Listing{
		{
			Title:         "Shinjuku Loft",
			PricePerNight: 120,
			Currency:      "USD",
			Rating:        &rating,
			ReviewCount:   &count,
			URL:           "https://example.com/rooms/111",
		},
		{Title: "Unpriced Stay", Currency: "USD"},
	}

	require.NoError(t, w.SaveListings(ctx, listings))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "rank", rows[0][0])
	assert.Equal(t, []string{
		"1", "Shinjuku Loft", "120.00", "USD", "4.85", "128",
		"https://example.com/rooms/111", "Tokyo", "2026-03-01", "2026-03-05",
	}, rows[1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "0.00", rows[2][2])
	assert.Empty(t, rows[2][4], "missing rating stays blank")
}

func TestCSVWriterOverwritesPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	w := NewCSVWriter(path, utils.NewTestLogger())
	ctx := models.SearchContext{Location: "Tokyo"}

	require.NoError(t, w.SaveListings(ctx, []*models.Listing{{Title: "A"}, {Title: "B"}}))
	require.NoError(t, w.SaveListings(ctx, []*models.Listing{{Title: "C"}}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "each save is a fresh file")
	assert.Equal(t, "C", rows[1][1])
}
