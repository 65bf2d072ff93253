// Package browser implements the Backend contract on top of a real Chrome
// instance driven through chromedp. It covers two variants: the plain
// "browser" backend and the proxied "stealth" backend.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/scraper"
	"staysearch/utils"

	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Backend drives Chrome through the DevTools protocol.
type Backend struct {
	name     string
	cfg      *config.Config
	logger   *utils.Logger
	proxyURL string // set on the stealth variant

	mu         sync.Mutex
	connected  bool
	browserCtx context.Context
	cancel     context.CancelFunc
}

// New creates the plain chromedp-backed backend.
func New(cfg *config.Config, logger *utils.Logger) *Backend {
	return &Backend{name: "browser", cfg: cfg, logger: logger}
}

// NewStealth creates the hardened variant: same scraping logic, extra
// anti-detection flags, and all traffic through the configured proxy.
func NewStealth(cfg *config.Config, logger *utils.Logger) *Backend {
	return &Backend{name: "stealth", cfg: cfg, logger: logger, proxyURL: cfg.StealthProxyURL}
}

func (b *Backend) Name() string { return b.name }

// Connect allocates the browser. Remote CDP is preferred when configured;
// otherwise a local headless Chrome is launched. Calling Connect on an
// already-connected backend is a no-op.
func (b *Backend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected {
		return nil
	}

	var allocCtx context.Context
	var cancelAlloc context.CancelFunc

	if b.cfg.ChromeWSURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), b.cfg.ChromeWSURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("log-level", "3"), // suppress Chrome logs
			chromedp.UserAgent(userAgent),
			chromedp.WindowSize(1280, 900),
		)
		if b.proxyURL != "" {
			opts = append(opts, chromedp.ProxyServer(b.proxyURL))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Prove the browser is actually reachable before declaring success.
	probeCtx, cancelProbe := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancelProbe()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		cancelCtx()
		cancelAlloc()
		return &scraper.ConnectionError{Backend: b.name, Err: err}
	}

	b.browserCtx = browserCtx
	b.cancel = func() {
		cancelCtx()
		cancelAlloc()
	}
	b.connected = true
	b.logger.Info("[%s] browser connected", b.name)
	return nil
}

// Disconnect tears the browser down. Best-effort and idempotent.
func (b *Backend) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.connected {
		return nil
	}
	b.cancel()
	b.connected = false
	b.browserCtx = nil
	b.cancel = nil
	b.logger.Debug("[%s] browser disconnected", b.name)
	return nil
}

func (b *Backend) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// HealthCheck runs a trivial script in the live browser. Never errors.
func (b *Backend) HealthCheck(ctx context.Context) bool {
	b.mu.Lock()
	browserCtx := b.browserCtx
	connected := b.connected
	b.mu.Unlock()
	if !connected {
		return false
	}
	probeCtx, cancel := context.WithTimeout(browserCtx, 10*time.Second)
	defer cancel()
	var one int
	return chromedp.Run(probeCtx, chromedp.Evaluate(`1`, &one)) == nil && one == 1
}

// searchURL builds the stays search URL for the request.
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

// cardData mirrors the JS extraction result for one listing card.
type cardData struct {
	Title  string `json:"title"`
	Price  string `json:"price"`
	Rating string `json:"rating"`
	URL    string `json:"url"`
	Image  string `json:"image"`
}

// Search navigates to the results page and extracts listing cards. Returns
// an empty slice for "no results"; errors only on total failure.
func (b *Backend) Search(ctx context.Context, req models.SearchRequest) ([]*models.Listing, error) {
	b.mu.Lock()
	browserCtx := b.browserCtx
	connected := b.connected
	b.mu.Unlock()
	if !connected {
		return nil, fmt.Errorf("%s: search before connect", b.name)
	}

	pageURL := b.searchURL(req)
	b.logger.Info("[%s] searching: %s", b.name, pageURL)

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	runCtx, cancelRun := mergeDeadline(tabCtx, ctx, 90*time.Second)
	defer cancelRun()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(4*time.Second), // give JS time to render
	)
	if err != nil {
		return nil, fmt.Errorf("navigate failed: %w", err)
	}

	// Wait for any listing card, falling back to a plain delay when the
	// selector never shows up.
	if waitErr := chromedp.Run(runCtx, chromedp.WaitVisible(`[itemprop="itemListElement"]`, chromedp.ByQuery)); waitErr != nil {
		_ = chromedp.Run(runCtx, chromedp.Sleep(3*time.Second))
	}

	var cards []cardData
	if err := chromedp.Run(runCtx, chromedp.Evaluate(cardExtractionJS, &cards)); err != nil {
		return nil, fmt.Errorf("card extraction failed: %w", err)
	}

	seen := utils.NewSeenTracker()
	var listings []*models.Listing
	for _, c := range cards {
		if c.Title == "" && c.URL == "" {
			continue
		}
		if !seen.Add(c.URL + "|" + strings.ToLower(c.Title)) {
			continue
		}
		listings = append(listings, &models.Listing{
			Title:         strings.TrimSpace(c.Title),
			PricePerNight: scraper.ParsePrice(c.Price),
			Currency:      req.Currency,
			Rating:        scraper.ParseRating(c.Rating),
			URL:           strings.TrimSpace(c.URL),
			ImageURL:      strings.TrimSpace(c.Image),
		})
		if len(listings) >= b.cfg.MaxResults {
			break
		}
	}

	b.logger.Info("[%s] extracted %d listings", b.name, len(listings))
	return listings, nil
}

// detailData mirrors the JS extraction result for a detail page.
type detailData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	ReviewCount string `json:"reviewCount"`
	Image       string `json:"image"`
	Reviews     []struct {
		Text   string `json:"text"`
		Author string `json:"author"`
		Date   string `json:"date"`
	} `json:"reviews"`
}

// ListingDetails fetches one detail page in a fresh tab.
func (b *Backend) ListingDetails(ctx context.Context, pageURL string) (*models.ListingDetail, error) {
	b.mu.Lock()
	browserCtx := b.browserCtx
	connected := b.connected
	b.mu.Unlock()
	if !connected {
		return nil, fmt.Errorf("%s: detail fetch before connect", b.name)
	}
	if pageURL == "" {
		return nil, fmt.Errorf("empty listing url")
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	runCtx, cancelRun := mergeDeadline(tabCtx, ctx, 45*time.Second)
	defer cancelRun()

	var d detailData
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(detailExtractionJS, &d),
	)
	if err != nil {
		return nil, fmt.Errorf("detail extraction failed for %s: %w", pageURL, err)
	}

	detail := &models.ListingDetail{
		Listing: models.Listing{
			Title:         strings.TrimSpace(d.Title),
			PricePerNight: scraper.ParsePrice(d.Price),
			Rating:        scraper.ParseRating(d.Rating),
			ReviewCount:   scraper.ParseReviewCount(d.ReviewCount),
			URL:           pageURL,
			ImageURL:      strings.TrimSpace(d.Image),
		},
		Description: strings.TrimSpace(d.Description),
	}
	for _, r := range d.Reviews {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		detail.Reviews = append(detail.Reviews, models.Review{
			Text:   strings.TrimSpace(r.Text),
			Author: strings.TrimSpace(r.Author),
			Date:   strings.TrimSpace(r.Date),
		})
		if len(detail.Reviews) >= 8 {
			break
		}
	}
	return detail, nil
}

// MultipleListingDetails fetches detail pages with bounded concurrency,
// nil-filling failures. Never errors on partial failure.
func (b *Backend) MultipleListingDetails(ctx context.Context, urls []string) ([]*models.ListingDetail, error) {
	details := scraper.FetchAll(ctx, urls, func(ctx context.Context, u string) (*models.ListingDetail, error) {
		d, err := b.ListingDetails(ctx, u)
		if err != nil {
			b.logger.Warn("[%s] detail fetch failed for %s: %v", b.name, u, err)
			return nil, nil
		}
		return d, nil
	})
	return details, nil
}

// mergeDeadline bounds a tab context by both the caller's context and a
// hard cap, whichever fires first.
func mergeDeadline(tabCtx, callerCtx context.Context, limit time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tabCtx, limit)
	stop := context.AfterFunc(callerCtx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
