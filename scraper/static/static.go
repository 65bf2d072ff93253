// Package static implements the Backend contract over plain HTTP requests
// and server-rendered markup. No JavaScript runs, so it sees less than the
// browser backend but is far cheaper and faster.
package static

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/scraper"
	"staysearch/utils"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Backend scrapes server-rendered listing markup over HTTP.
type Backend struct {
	cfg    *config.Config
	logger *utils.Logger

	mu        sync.Mutex
	client    *http.Client
	connected bool
}

// New creates the static backend.
func New(cfg *config.Config, logger *utils.Logger) *Backend {
	return &Backend{cfg: cfg, logger: logger}
}

func (b *Backend) Name() string { return "static" }

// Connect builds the HTTP client and warms the cookie jar with one request
// against the base URL. Idempotent.
func (b *Backend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected {
		return nil
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return &scraper.ConnectionError{Backend: b.Name(), Err: err}
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL, nil)
	if err != nil {
		return &scraper.ConnectionError{Backend: b.Name(), Err: err}
	}
	setBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return &scraper.ConnectionError{Backend: b.Name(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &scraper.ConnectionError{Backend: b.Name(), Err: fmt.Errorf("base url returned status %d", resp.StatusCode)}
	}

	b.client = client
	b.connected = true
	b.logger.Info("[static] connected, cookie jar warmed")
	return nil
}

// Disconnect drops the client. Best-effort and idempotent.
func (b *Backend) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.client = nil
	b.connected = false
	return nil
}

func (b *Backend) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// HealthCheck issues a HEAD request against the base URL. Never errors.
func (b *Backend) HealthCheck(ctx context.Context) bool {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()
	if client == nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, b.cfg.BaseURL, nil)
	if err != nil {
		return false
	}
	setBrowserHeaders(req)
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

func (b *Backend) searchURL(req models.SearchRequest) string {
	q := url.Values{}
	q.Set("checkin", req.CheckIn.Format("2006-01-02"))
	q.Set("checkout", req.CheckOut.Format("2006-01-02"))
	q.Set("adults", fmt.Sprintf("%d", req.Guests))
	if req.BudgetMin != nil {
		q.Set("price_min", fmt.Sprintf("%.0f", *req.BudgetMin))
	}
	if req.BudgetMax != nil {
		q.Set("price_max", fmt.Sprintf("%.0f", *req.BudgetMax))
	}
	loc := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(req.Location), " ", "-"))
	return fmt.Sprintf("%s/s/%s/homes?%s", strings.TrimRight(b.cfg.BaseURL, "/"), loc, q.Encode())
}

// Search fetches the results page and extracts listing cards from the
// server-rendered markup. Empty slice means "no results", not failure.
func (b *Backend) Search(ctx context.Context, req models.SearchRequest) ([]*models.Listing, error) {
	doc, err := b.fetch(ctx, b.searchURL(req))
	if err != nil {
		return nil, fmt.Errorf("search fetch failed: %w", err)
	}

	seen := utils.NewSeenTracker()
	var listings []*models.Listing

	extract := func(_ int, card *goquery.Selection) {
		if len(listings) >= b.cfg.MaxResults {
			return
		}
		title := strings.TrimSpace(card.Find(`[itemprop="name"]`).AttrOr("content", ""))
		if title == "" {
			title = strings.TrimSpace(card.Find(`[data-testid="listing-card-title"]`).First().Text())
		}
		href := card.Find(`a[href*="/rooms/"]`).First().AttrOr("href", "")
		if href == "" {
			href = strings.TrimSpace(card.Find(`[itemprop="url"]`).AttrOr("content", ""))
		}
		pageURL := absoluteURL(b.cfg.BaseURL, href)
		if title == "" && pageURL == "" {
			return
		}
		if !seen.Add(pageURL + "|" + strings.ToLower(title)) {
			return
		}

		// First short $-prefixed span wins, same heuristic as the browser
		// backend's in-page scan.
		var price string
		card.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := strings.TrimSpace(s.Text())
			if strings.HasPrefix(t, "$") && len(t) < 40 {
				price = t
				return false
			}
			return true
		})

		var rating string
		card.Find(`[aria-label*="out of 5"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			rating = s.AttrOr("aria-label", "")
			return false
		})

		listings = append(listings, &models.Listing{
			Title:         title,
			PricePerNight: scraper.ParsePrice(price),
			Currency:      req.Currency,
			Rating:        scraper.ParseRating(rating),
			URL:           pageURL,
			ImageURL:      card.Find("img").First().AttrOr("src", ""),
		})
	}

	cards := doc.Find(`[itemprop="itemListElement"]`)
	if cards.Length() == 0 {
		cards = doc.Find(`[data-testid="card-container"]`)
	}
	cards.Each(extract)

	b.logger.Info("[static] extracted %d listings", len(listings))
	return listings, nil
}

// ListingDetails parses what the detail page exposes without JavaScript:
// open-graph metadata and any server-rendered description. Reviews rarely
// render statically, so the result often carries none.
func (b *Backend) ListingDetails(ctx context.Context, pageURL string) (*models.ListingDetail, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("empty listing url")
	}
	doc, err := b.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("detail fetch failed for %s: %w", pageURL, err)
	}

	title := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	desc := strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	}

	detail := &models.ListingDetail{
		Listing: models.Listing{
			Title:    title,
			URL:      pageURL,
			ImageURL: doc.Find(`meta[property="og:image"]`).AttrOr("content", ""),
		},
		Description: desc,
	}

	doc.Find(`[data-review-id]`).Each(func(_ int, r *goquery.Selection) {
		if len(detail.Reviews) >= 8 {
			return
		}
		text := strings.TrimSpace(r.Find("span").First().Text())
		if text == "" {
			return
		}
		detail.Reviews = append(detail.Reviews, models.Review{
			Text:   text,
			Author: strings.TrimSpace(r.Find("h3, h2").First().Text()),
			Date:   strings.TrimSpace(r.Find("li, time").First().Text()),
		})
	})

	return detail, nil
}

// MultipleListingDetails fetches detail pages with bounded concurrency,
// nil-filling failures. Never errors on partial failure.
func (b *Backend) MultipleListingDetails(ctx context.Context, urls []string) ([]*models.ListingDetail, error) {
	details := scraper.FetchAll(ctx, urls, func(ctx context.Context, u string) (*models.ListingDetail, error) {
		d, err := b.ListingDetails(ctx, u)
		if err != nil {
			b.logger.Warn("[static] detail fetch failed for %s: %v", u, err)
			return nil, nil
		}
		return d, nil
	})
	return details, nil
}

// fetch GETs a page and parses it into a goquery document.
func (b *Backend) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	b.mu.Lock()
	client := b.client
	connected := b.connected
	b.mu.Unlock()
	if !connected {
		return nil, fmt.Errorf("static: fetch before connect")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	setBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
