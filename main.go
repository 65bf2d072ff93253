package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/pipeline"
	"staysearch/scraper"
	"staysearch/scraper/browser"
	"staysearch/scraper/static"
	"staysearch/services"
	"staysearch/storage"
	"staysearch/stream"
	"staysearch/utils"
)

func main() {
	// ================== Bootstrap ====================
	logger := utils.NewLogger()
	cfg := config.Load()

	var (
		query    = flag.String("query", "", "free-text search (requires OPENAI_API_KEY), e.g. \"2 people in Tokyo mid March, $100-200 a night\"")
		location = flag.String("location", "", "destination city or area")
		checkIn  = flag.String("checkin", "", "check-in date, YYYY-MM-DD")
		checkOut = flag.String("checkout", "", "check-out date, YYYY-MM-DD")
		guests   = flag.Int("guests", models.DefaultGuests, "number of guests")
		minPrice = flag.Float64("min", 0, "minimum nightly budget (0 = unset)")
		maxPrice = flag.Float64("max", 0, "maximum nightly budget (0 = unset)")
		mode     = flag.String("mode", "", "execution mode: browser, static, stealth or dual")
		client   = flag.String("client", "local", "client identifier for rate limiting")
		doctor   = flag.Bool("doctor", false, "probe backend health before searching")
	)
	flag.Parse()

	logger.Info("Accommodation Search System")
	logger.Info("Mode: %s | Max results: %d | Enrich concurrency: %d",
		pipeline.ParseMode(*mode, cfg.DefaultMode), cfg.MaxResults, cfg.EnrichConcurrency)

	// =============== Request construction ===================
	req, err := buildRequest(cfg, logger, *query, *location, *checkIn, *checkOut, *guests, *minPrice, *maxPrice)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if req == nil {
		// Intent parser asked a clarification question; it was printed.
		os.Exit(0)
	}

	// =============== Rate limiting ===================
	limiter := utils.NewClientLimiter(cfg.RateLimit, cfg.RateWindow)
	if err := limiter.Allow(*client); err != nil {
		var rle *utils.RateLimitError
		if errors.As(err, &rle) {
			logger.Error("Too many requests, retry in %s", rle.RetryAfter.Round(time.Second))
		}
		os.Exit(1)
	}

	// =============== Pipeline ===================
	factory := func(m pipeline.Mode) (scraper.Backend, error) {
		switch m {
		case pipeline.ModeBrowser:
			return browser.New(cfg, logger), nil
		case pipeline.ModeStatic:
			return static.New(cfg, logger), nil
		case pipeline.ModeStealth:
			return browser.NewStealth(cfg, logger), nil
		}
		return nil, fmt.Errorf("unknown backend mode %q", m)
	}

	if *doctor {
		probeBackends(cfg, logger, factory)
	}

	summarizer := services.NewSummarizer(cfg, logger)
	pipe := pipeline.New(cfg, logger, factory, summarizer)
	em := stream.NewEmitter(16)

	finalCh := make(chan *stream.ResultsPayload, 1)
	go func() {
		finalCh <- consume(em)
	}()

	if err := pipe.Run(context.Background(), *req, *mode, em); err != nil {
		em.Abandon()
		logger.Error("Search failed: %v", err)
		os.Exit(1)
	}
	final := <-finalCh
	if final == nil {
		logger.Warn("Search finished without results")
		os.Exit(0)
	}

	// =============== Render + sinks ===================
	render(final)
	persist(cfg, logger, final)
}

// buildRequest assembles the SearchRequest from free text (via the intent
// collaborator) or from structured flags.
func buildRequest(cfg *config.Config, logger *utils.Logger, query, location, checkIn, checkOut string, guests int, minPrice, maxPrice float64) (*models.SearchRequest, error) {
	if query != "" {
		parser := services.NewIntentParser(cfg, logger)
		if parser == nil {
			return nil, fmt.Errorf("-query needs OPENAI_API_KEY; use -location/-checkin/-checkout instead")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		outcome, err := parser.Parse(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("could not understand the request: %w", err)
		}
		if outcome.Clarification != "" {
			fmt.Println(outcome.Clarification)
			return nil, nil
		}
		return outcome.Request, nil
	}

	in, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return nil, fmt.Errorf("bad -checkin date %q (want YYYY-MM-DD)", checkIn)
	}
	out, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		return nil, fmt.Errorf("bad -checkout date %q (want YYYY-MM-DD)", checkOut)
	}

	req := &models.SearchRequest{
		Location: location,
		CheckIn:  in,
		CheckOut: out,
		Guests:   guests,
	}
	if minPrice > 0 {
		req.BudgetMin = &minPrice
	}
	if maxPrice > 0 {
		req.BudgetMax = &maxPrice
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// consume drains the update stream, printing text and status lines, and
// returns the terminal results payload (nil if none arrived).
func consume(em *stream.Emitter) *stream.ResultsPayload {
	var final *stream.ResultsPayload
	for u := range em.Updates() {
		switch u.Type {
		case stream.UpdateText:
			fmt.Print(u.Text)
		case stream.UpdateStatus:
			fmt.Printf("  » %s\n", u.Text)
		case stream.UpdateResults:
			final = u.Results
		case stream.UpdateError:
			fmt.Printf("  ! %s\n", u.Text)
		case stream.UpdateDone:
			// Completion marker; duplicates are harmless.
		}
	}
	return final
}

func render(final *stream.ResultsPayload) {
	if final.Dual != nil {
		services.PrintComparisonReport(final.Dual.Ranked, final.Dual.Eval)
		return
	}
	if final.Single != nil {
		services.PrintRankedReport(final.Backend, final.Single)
	}
}

// persist drives the optional sinks. Never fatal: exporting is best-effort.
func persist(cfg *config.Config, logger *utils.Logger, final *stream.ResultsPayload) {
	single := final.Single
	if single == nil && final.Dual != nil && final.Dual.Eval != nil {
		// In dual mode, store the winner's ranked list (or the first
		// backend's on a tie).
		winner := final.Dual.Eval.Comparison.Winner
		if r, ok := final.Dual.Ranked[winner]; ok {
			single = r
		}
	}

	if cfg.CSVFilePath != "" && single != nil {
		csvWriter := storage.NewCSVWriter(cfg.CSVFilePath, logger)
		if err := csvWriter.SaveListings(single.Context, single.Listings); err != nil {
			logger.Error("Failed to write CSV: %v", err)
		}
	}

	if cfg.DatabaseURL != "" {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
			return
		}
		defer pgWriter.Close()
		if err := pgWriter.CreateTables(); err != nil {
			logger.Error("Failed to create DB tables: %v", err)
			return
		}
		if single != nil {
			if err := pgWriter.SaveListings(single.Context, single.Listings); err != nil {
				logger.Error("Failed to insert listings: %v", err)
			}
		}
		if final.Dual != nil && final.Dual.Eval != nil {
			if err := pgWriter.SaveEval(final.Dual.Eval); err != nil {
				logger.Error("Failed to store evaluation: %v", err)
			}
		}
	}
}

// probeBackends connects to each configured backend and runs its health
// check. Diagnostic only.
func probeBackends(cfg *config.Config, logger *utils.Logger, factory pipeline.BackendFactory) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, m := range []pipeline.Mode{pipeline.ModeBrowser, pipeline.ModeStatic} {
		b, err := factory(m)
		if err != nil {
			continue
		}
		if err := b.Connect(ctx); err != nil {
			logger.Warn("[doctor] %s: connect failed: %v", b.Name(), err)
			continue
		}
		healthy := b.HealthCheck(ctx)
		logger.Info("[doctor] %s: connected=%t healthy=%t", b.Name(), b.IsConnected(), healthy)
		_ = b.Disconnect(ctx)
	}
}
