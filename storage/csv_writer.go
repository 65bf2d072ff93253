package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"staysearch/models"
	"staysearch/utils"
)

// CSVWriter exports a ranked listing set to a CSV file.
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter.
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// SaveListings writes the ranked listings to the configured file.
func (w *CSVWriter) SaveListings(ctx models.SearchContext, listings []*models.Listing) error {
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"rank", "title", "price_per_night", "currency", "rating",
		"review_count", "url", "location", "check_in", "check_out",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, l := range listings {
		rating := ""
		if l.Rating != nil {
			rating = strconv.FormatFloat(*l.Rating, 'f', 2, 64)
		}
		reviewCount := ""
		if l.ReviewCount != nil {
			reviewCount = strconv.Itoa(*l.ReviewCount)
		}
		row := []string{
			strconv.Itoa(i + 1),
			l.Title,
			strconv.FormatFloat(l.PricePerNight, 'f', 2, 64),
			l.Currency,
			rating,
			reviewCount,
			l.URL,
			ctx.Location,
			ctx.CheckIn,
			ctx.CheckOut,
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row for '%s': %v", l.Title, err)
		}
	}

	w.logger.Info("Ranked listings written to: %s (%d rows)", w.filePath, len(listings))
	return nil
}

// Close is a no-op for file-per-save output.
func (w *CSVWriter) Close() error { return nil }
