// Package scraper defines the capability contract every search backend must
// satisfy, plus the raw-field parsing shared by all backend variants.
package scraper

import (
	"context"

	"staysearch/models"
)

// Backend is the single contract the pipeline drives. Implementations are
// polymorphic; the orchestrator never branches on a concrete variant except
// to display its name and to pick mode-specific fallback ordering.
//
// Connect is idempotent and must be safe to call at most once before use.
// Disconnect is idempotent and best-effort: failures are logged, not fatal.
// HealthCheck never returns an error, only a verdict.
// Search returns the backend's native result count (typically <= 10); it
// errors only on total failure — "no results" is an empty slice, not an
// error. ListingDetails errors on failure; MultipleListingDetails never
// does, degrading by nil-filling failed slots, and must bound its own
// concurrency to avoid tripping anti-automation defenses upstream.
type Backend interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	HealthCheck(ctx context.Context) bool
	Search(ctx context.Context, req models.SearchRequest) ([]*models.Listing, error)
	ListingDetails(ctx context.Context, url string) (*models.ListingDetail, error)
	MultipleListingDetails(ctx context.Context, urls []string) ([]*models.ListingDetail, error)
}
