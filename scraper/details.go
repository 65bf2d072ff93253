package scraper

import (
	"context"

	"staysearch/pool"
)

// DetailConcurrency bounds parallel detail-page fetches inside a backend.
// Higher values trip the target site's anti-automation defenses.
const DetailConcurrency = 3

// FetchFunc fetches one detail page. Backends plug their own fetcher in.
type FetchFunc[D any] func(ctx context.Context, url string) (D, error)

// FetchAll fetches detail pages for urls with bounded concurrency,
// preserving input order. Failed slots come back as the zero D; partial
// failure never surfaces as an error, per the capability contract.
func FetchAll[D any](ctx context.Context, urls []string, fetch FetchFunc[D]) []D {
	details, _ := pool.Map(ctx, urls, DetailConcurrency,
		func(ctx context.Context, _ int, url string) (D, error) {
			return fetch(ctx, url)
		})
	return details
}
