// Package pipeline orchestrates a search run: mode resolution, per-backend
// execution with retry, single-backend failover, dual-backend comparison,
// status emission, and the whole-run deadline race.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/pool"
	"staysearch/scraper"
	"staysearch/services"
	"staysearch/stream"
	"staysearch/utils"
)

// BackendFactory constructs the backend for a single-backend mode. Injected
// so the pipeline never depends on concrete backend packages.
type BackendFactory func(mode Mode) (scraper.Backend, error)

// Pipeline coordinates one search request end to end.
type Pipeline struct {
	cfg        *config.Config
	logger     *utils.Logger
	post       *services.PostProcessor
	eval       *services.Evaluator
	summarizer services.Summarizer
	newBackend BackendFactory
}

// New wires a Pipeline.
func New(cfg *config.Config, logger *utils.Logger, factory BackendFactory, summarizer services.Summarizer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		post:       services.NewPostProcessor(cfg, logger),
		eval:       services.NewEvaluator(cfg, logger),
		summarizer: summarizer,
		newBackend: factory,
	}
}

// Run executes the request in the given mode, emitting ordered updates to
// em. It blocks until the run finishes or the pipeline deadline fires. On a
// deadline loss the run context is cancelled so well-behaved backends
// unwind, but Run does not wait for them; the caller should Abandon the
// emitter after an error return.
func (p *Pipeline) Run(ctx context.Context, req models.SearchRequest, rawMode string, em *stream.Emitter) error {
	mode := ParseMode(rawMode, p.cfg.DefaultMode)

	if err := req.Validate(); err != nil {
		em.Error("That search request is not quite right: " + err.Error())
		em.Done()
		em.Close()
		return fmt.Errorf("invalid request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.PipelineTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := p.execute(runCtx, req, mode, em)
		if err == nil {
			em.Done()
		}
		em.Close()
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TimeoutError{After: p.cfg.PipelineTimeout}
	}
}

// execute resolves backends and dispatches the run.
func (p *Pipeline) execute(ctx context.Context, req models.SearchRequest, mode Mode, em *stream.Emitter) error {
	em.Text(fmt.Sprintf("Searching stays in %s for %d guest(s), %s to %s...\n",
		req.Location, req.Guests,
		req.CheckIn.Format("Jan 2"), req.CheckOut.Format("Jan 2")))

	if mode == ModeDual {
		return p.runDual(ctx, req, em)
	}
	if err := p.backendConfigured(mode); err != nil {
		em.Error("This search mode is not available right now.")
		return err
	}
	return p.runSingle(ctx, req, mode, em, nil)
}

// backendConfigured checks the required configuration for one backend.
func (p *Pipeline) backendConfigured(m Mode) error {
	switch m {
	case ModeBrowser:
		if p.cfg.ChromeWSURL == "" && !p.cfg.BrowserAllowLocal {
			return &ConfigError{Backend: string(m), Missing: "CHROME_WS_URL (or BROWSER_ALLOW_LOCAL)"}
		}
	case ModeStatic:
		if p.cfg.BaseURL == "" {
			return &ConfigError{Backend: string(m), Missing: "AIRBNB_URL"}
		}
	case ModeStealth:
		if p.cfg.StealthProxyURL == "" {
			return &ConfigError{Backend: string(m), Missing: "STEALTH_PROXY_URL"}
		}
	}
	return nil
}

// runSingle executes one backend, fails over to the single alternate when
// allowed, ranks, and emits the final list.
func (p *Pipeline) runSingle(ctx context.Context, req models.SearchRequest, mode Mode, em *stream.Emitter, notes []string) error {
	b, err := p.newBackend(mode)
	if err != nil {
		em.Error("This search mode is not available right now.")
		return fmt.Errorf("construct %s backend: %w", mode, err)
	}

	res := p.runBackend(ctx, b, req, em)

	if res.EmptyWithErrors() {
		if alt := fallbackFor(mode); alt != "" && p.backendConfigured(alt) == nil {
			em.Status(fmt.Sprintf("%s came up empty, retrying with %s...", res.Backend, alt))
			if ab, err := p.newBackend(alt); err == nil {
				altRes := p.runBackend(ctx, ab, req, em)
				// Adopt the alternate only when it actually produced
				// something.
				if !altRes.EmptyWithErrors() {
					notes = append(notes, fmt.Sprintf("Fell back to the %s backend after %s failed", alt, res.Backend))
					res = altRes
				}
			}
		} else if mode == ModeStealth {
			em.Error("The stealth search failed and has no fallback.")
			return fmt.Errorf("stealth search failed: %s", res.Errors[0])
		}
	}

	em.Status("Ranking results...")
	ranked := p.post.Process(res.Listings, req)
	ranked.Notes = append(notes, ranked.Notes...)
	if res.EmptyWithErrors() {
		ranked.Notes = append(ranked.Notes, "No listings could be retrieved this time")
	}

	em.Results(&stream.ResultsPayload{
		Mode:    string(mode),
		Backend: res.Backend,
		Single:  ranked,
	})
	return nil
}

// runDual fires both designated backends concurrently, ranks both outputs
// independently, and hands both executions to the evaluator. If exactly one
// of the two is configured the run silently degrades to single mode with a
// note; if neither is, that is a ConfigError.
func (p *Pipeline) runDual(ctx context.Context, req models.SearchRequest, em *stream.Emitter) error {
	errA := p.backendConfigured(dualBackends[0])
	errB := p.backendConfigured(dualBackends[1])
	switch {
	case errA != nil && errB != nil:
		em.Error("No search backend is configured for comparison mode.")
		return errA
	case errA != nil:
		return p.degradeToSingle(ctx, req, dualBackends[1], dualBackends[0], em)
	case errB != nil:
		return p.degradeToSingle(ctx, req, dualBackends[0], dualBackends[1], em)
	}

	backends := make([]scraper.Backend, len(dualBackends))
	for i, m := range dualBackends {
		b, err := p.newBackend(m)
		if err != nil {
			em.Error("Comparison mode is not available right now.")
			return fmt.Errorf("construct %s backend: %w", m, err)
		}
		backends[i] = b
	}

	em.Status("Running both backends in parallel for comparison...")
	results := make([]*models.BackendExecutionResult, len(backends))
	var wg sync.WaitGroup
	wg.Add(len(backends))
	for i, b := range backends {
		go func(i int, b scraper.Backend) {
			defer wg.Done()
			results[i] = p.runBackend(ctx, b, req, em)
		}(i, b)
	}
	wg.Wait()

	em.Status("Ranking results...")
	ranked := make(map[string]*models.PostProcessResult, len(results))
	byName := make(map[string]*models.BackendExecutionResult, len(results))
	for _, r := range results {
		ranked[r.Backend] = p.post.Process(r.Listings, req)
		byName[r.Backend] = r
	}

	em.Status("Comparing backends...")
	eval := p.eval.Evaluate(req, byName)

	em.Results(&stream.ResultsPayload{
		Mode: string(ModeDual),
		Dual: &stream.DualPayload{Ranked: ranked, Eval: eval},
	})
	return nil
}

func (p *Pipeline) degradeToSingle(ctx context.Context, req models.SearchRequest, use, missing Mode, em *stream.Emitter) error {
	p.logger.Warn("Dual mode degraded: %s is not configured, using %s only", missing, use)
	note := fmt.Sprintf("Comparison unavailable: the %s backend is not configured, searched with %s only", missing, use)
	return p.runSingle(ctx, req, use, em, []string{note})
}

// runBackend is one full backend execution: connect, search with retry,
// enrich, disconnect. Failures downstream of connect degrade rather than
// abort; everything is recorded on the result either way.
func (p *Pipeline) runBackend(ctx context.Context, b scraper.Backend, req models.SearchRequest, em *stream.Emitter) *models.BackendExecutionResult {
	res := &models.BackendExecutionResult{Backend: b.Name()}
	start := time.Now()
	defer func() { res.TotalTime = time.Since(start) }()

	em.Status(fmt.Sprintf("Connecting to the %s backend...", b.Name()))
	if err := b.Connect(ctx); err != nil {
		p.logger.Error("[%s] connect failed: %v", b.Name(), err)
		res.Errors = append(res.Errors, fmt.Sprintf("connect: %v", err))
		return res
	}
	defer func() {
		// Disconnect gets its own short deadline: the run context may
		// already be dead and teardown should still be attempted.
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.Disconnect(dctx); err != nil {
			p.logger.Warn("[%s] disconnect failed: %v", b.Name(), err)
			res.Errors = append(res.Errors, fmt.Sprintf("disconnect: %v", err))
		}
	}()

	em.Status(fmt.Sprintf("Searching %s on %s...", req.Location, b.Name()))
	var listings []*models.Listing
	err := utils.Retry(ctx, p.cfg.SearchAttempts, p.cfg.RetryDelay, func() error {
		found, err := b.Search(ctx, req)
		if err != nil {
			return err
		}
		listings = found
		return nil
	}, p.logger)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("search: %v", err))
		return res
	}
	if len(listings) == 0 {
		// No results is a legitimate outcome, not a failure.
		return res
	}
	res.TimeToFirstResult = time.Since(start)

	em.Status(fmt.Sprintf("Enriching %d listings with details and reviews...", len(listings)))
	p.enrich(ctx, b, listings, res)

	res.Listings = listings
	return res
}

// enrich merges detail pages into the listings and generates review
// summaries. Every failure here is non-fatal: the original listing is kept
// unenriched and the failure is recorded.
func (p *Pipeline) enrich(ctx context.Context, b scraper.Backend, listings []*models.Listing, res *models.BackendExecutionResult) {
	urls := make([]string, len(listings))
	for i, l := range listings {
		urls[i] = l.URL
	}

	details, err := b.MultipleListingDetails(ctx, urls)
	if err != nil {
		// Contract says this should not happen; record and keep going.
		res.Errors = append(res.Errors, fmt.Sprintf("enrich: %v", err))
		return
	}

	failed := 0
	for i, d := range details {
		if i >= len(listings) {
			break
		}
		if d == nil {
			if urls[i] != "" {
				failed++
			}
			continue
		}
		listings[i].MergeDetail(d)
	}
	if failed > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("enrich: detail fetch failed for %d of %d listings", failed, len(listings)))
	}

	// Summaries only for listings whose detail carried reviews.
	type job struct {
		idx     int
		title   string
		reviews []models.Review
	}
	var jobs []job
	for i, d := range details {
		if d != nil && len(d.Reviews) > 0 && i < len(listings) {
			jobs = append(jobs, job{idx: i, title: listings[i].Title, reviews: d.Reviews})
		}
	}
	if len(jobs) == 0 {
		return
	}

	summaries, errs := pool.Map(ctx, jobs, p.cfg.EnrichConcurrency,
		func(ctx context.Context, _ int, j job) (string, error) {
			return p.summarizer.Summarize(ctx, j.title, j.reviews)
		})
	for i, j := range jobs {
		if errs[i] != nil {
			p.logger.Warn("[%s] summary failed for %q: %v", b.Name(), j.title, errs[i])
			res.Errors = append(res.Errors, fmt.Sprintf("summary: %v", errs[i]))
			continue
		}
		if summaries[i] != "" {
			listings[j.idx].ReviewSummary = summaries[i]
		}
	}
}
