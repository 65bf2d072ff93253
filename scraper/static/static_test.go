package static

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/scraper"
	"staysearch/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<!DOCTYPE html>
<html><body>
<div itemprop="itemListElement">
  <meta itemprop="name" content="Shinjuku Loft">
  <a href="/rooms/111">view</a>
  <span>Superhost</span>
  <span>$120 per night</span>
  <div aria-label="4.85 out of 5 average rating"></div>
  <img src="https://cdn.example.com/111.jpg">
</div>
<div itemprop="itemListElement">
  <meta itemprop="name" content="Asakusa Studio">
  <a href="/rooms/222">view</a>
  <span>$95 for 1 night</span>
</div>
<div itemprop="itemListElement">
  <meta itemprop="name" content="Shinjuku Loft">
  <a href="/rooms/111">duplicate card</a>
  <span>$120 per night</span>
</div>
</body></html>`

const detailPage = `<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Shinjuku Loft - Apartment in Tokyo">
<meta property="og:description" content="Bright corner flat near the station.">
<meta property="og:image" content="https://cdn.example.com/111-large.jpg">
</head><body>
<div data-review-id="r1"><span>Great location. A bit noisy.</span><h3>Mia</h3><time>March 2026</time></div>
<div data-review-id="r2"><span>Spotless and comfortable.</span><h3>Ken</h3></div>
</body></html>`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>home</body></html>")
	})
	mux.HandleFunc("/s/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage)
	})
	mux.HandleFunc("/rooms/111", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage)
	})
	mux.HandleFunc("/rooms/404", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testBackend(t *testing.T, baseURL string) *Backend {
	t.Helper()
	cfg := &config.Config{BaseURL: baseURL, MaxResults: 10}
	b := New(cfg, utils.NewTestLogger())
	require.NoError(t, b.Connect(context.Background()))
	t.Cleanup(func() { _ = b.Disconnect(context.Background()) })
	return b
}

func tokyoRequest() models.SearchRequest {
	return models.SearchRequest{
		Location: "Tokyo",
		CheckIn:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Guests:   2,
		Currency: "USD",
	}
}

func TestConnectLifecycle(t *testing.T) {
	srv := testServer(t)
	cfg := &config.Config{BaseURL: srv.URL, MaxResults: 10}
	b := New(cfg, utils.NewTestLogger())

	assert.False(t, b.IsConnected())
	require.NoError(t, b.Connect(context.Background()))
	assert.True(t, b.IsConnected())
	require.NoError(t, b.Connect(context.Background()), "connect is idempotent")

	assert.True(t, b.HealthCheck(context.Background()))

	require.NoError(t, b.Disconnect(context.Background()))
	assert.False(t, b.IsConnected())
	assert.False(t, b.HealthCheck(context.Background()))
}

func TestConnectFailsAgainstDeadServer(t *testing.T) {
	srv := testServer(t)
	srv.Close()

	b := New(&config.Config{BaseURL: srv.URL}, utils.NewTestLogger())
	err := b.Connect(context.Background())
	require.Error(t, err)

	var connErr *scraper.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "static", connErr.Backend)
}

func TestSearchExtractsAndDedupesCards(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)

	listings, err := b.Search(context.Background(), tokyoRequest())
	require.NoError(t, err)
	require.Len(t, listings, 2, "duplicate card collapses")

	loft := listings[0]
	assert.Equal(t, "Shinjuku Loft", loft.Title)
	assert.Equal(t, 120.0, loft.PricePerNight)
	assert.Equal(t, "USD", loft.Currency)
	assert.Equal(t, srv.URL+"/rooms/111", loft.URL)
	assert.Equal(t, "https://cdn.example.com/111.jpg", loft.ImageURL)
	require.NotNil(t, loft.Rating)
	assert.Equal(t, 4.85, *loft.Rating)

	studio := listings[1]
	assert.Equal(t, "Asakusa Studio", studio.Title)
	assert.Equal(t, 95.0, studio.PricePerNight, "per-night totals divide down")
	assert.Nil(t, studio.Rating)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)
	b.cfg.MaxResults = 1

	listings, err := b.Search(context.Background(), tokyoRequest())
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestSearchURLCarriesBudgetAndDates(t *testing.T) {
	b := New(&config.Config{BaseURL: "https://www.airbnb.com"}, utils.NewTestLogger())

	req := tokyoRequest()
	min, max := 100.0, 200.0
	req.BudgetMin, req.BudgetMax = &min, &max
	req.Location = "New York"

	u := b.searchURL(req)
	assert.Contains(t, u, "https://www.airbnb.com/s/New-York/homes?")
	assert.Contains(t, u, "checkin=2026-03-01")
	assert.Contains(t, u, "checkout=2026-03-05")
	assert.Contains(t, u, "adults=2")
	assert.Contains(t, u, "price_min=100")
	assert.Contains(t, u, "price_max=200")
}

func TestListingDetailsParsesMetaAndReviews(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)

	detail, err := b.ListingDetails(context.Background(), srv.URL+"/rooms/111")
	require.NoError(t, err)

	assert.Equal(t, "Shinjuku Loft - Apartment in Tokyo", detail.Title)
	assert.Equal(t, "Bright corner flat near the station.", detail.Description)
	assert.Equal(t, "https://cdn.example.com/111-large.jpg", detail.ImageURL)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "Great location. A bit noisy.", detail.Reviews[0].Text)
	assert.Equal(t, "Mia", detail.Reviews[0].Author)
	assert.Equal(t, "March 2026", detail.Reviews[0].Date)
}

func TestMultipleListingDetailsNilFillsFailures(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)

	urls := []string{srv.URL + "/rooms/111", srv.URL + "/rooms/404", ""}
	details, err := b.MultipleListingDetails(context.Background(), urls)
	require.NoError(t, err, "partial failure never errors")

	require.Len(t, details, 3)
	require.NotNil(t, details[0])
	assert.Equal(t, "Shinjuku Loft - Apartment in Tokyo", details[0].Title)
	assert.Nil(t, details[1])
	assert.Nil(t, details[2])
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://a.com/rooms/1", absoluteURL("https://a.com/", "/rooms/1"))
	assert.Equal(t, "https://b.com/x", absoluteURL("https://a.com", "https://b.com/x"))
	assert.Equal(t, "", absoluteURL("https://a.com", "  "))
}
