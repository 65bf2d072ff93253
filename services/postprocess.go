package services

import (
	"fmt"
	"math"
	"sort"

	"staysearch/config"
	"staysearch/models"
	"staysearch/utils"
)

// PostProcessor reduces one backend's raw listings to the final ranked,
// budget-aware list: dedupe, budget filtering with relaxation, selection
// policy, cap at the configured maximum.
type PostProcessor struct {
	logger     *utils.Logger
	maxResults int
	relaxPct   float64
	anchors    int
	midRange   int
}

// NewPostProcessor creates a PostProcessor from config.
func NewPostProcessor(cfg *config.Config, logger *utils.Logger) *PostProcessor {
	return &PostProcessor{
		logger:     logger,
		maxResults: cfg.MaxResults,
		relaxPct:   cfg.RelaxPercent,
		anchors:    cfg.AnchorCount,
		midRange:   cfg.MidCount,
	}
}

// Process ranks listings for the request. The returned list never exceeds
// the configured maximum; Notes names any relaxation applied.
func (p *PostProcessor) Process(listings []*models.Listing, req models.SearchRequest) *models.PostProcessResult {
	result := &models.PostProcessResult{
		Context: models.SearchContext{
			Location:  req.Location,
			CheckIn:   req.CheckIn.Format("2006-01-02"),
			CheckOut:  req.CheckOut.Format("2006-01-02"),
			HadBudget: req.HasBudget(),
		},
	}

	deduped := Dedupe(listings)
	valid, invalid := partition(deduped)
	p.logger.Debug("Post-processing %d listings (%d deduped, %d valid)",
		len(listings), len(deduped), len(valid))

	var selected []*models.Listing
	if req.HasBudget() {
		var note string
		selected, note = p.selectByBudget(valid, req)
		if note != "" {
			result.Notes = append(result.Notes, note)
			result.Context.BudgetRelaxed = true
		}
	} else {
		selected = p.selectDiverse(valid)
	}

	// Invalid-price listings pad the tail, unranked, as a last resort.
	for _, l := range invalid {
		if len(selected) >= p.maxResults {
			break
		}
		selected = append(selected, l)
	}
	if len(selected) > p.maxResults {
		selected = selected[:p.maxResults]
	}

	result.Listings = selected
	return result
}

// Dedupe removes duplicate listings by identity key, keeping the first
// occurrence. Idempotent and order-preserving.
func Dedupe(listings []*models.Listing) []*models.Listing {
	seen := utils.NewSeenTracker()
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if seen.Add(l.Key()) {
			out = append(out, l)
		}
	}
	return out
}

// partition splits listings into priced and unpriced, both order-preserving.
func partition(listings []*models.Listing) (valid, invalid []*models.Listing) {
	for _, l := range listings {
		if l.Valid() {
			valid = append(valid, l)
		} else {
			invalid = append(invalid, l)
		}
	}
	return valid, invalid
}

// selectByBudget filters to the budget range, relaxes the max upward once
// when that strictly buys more results, and sorts by distance from the
// target price. A budget anchors a target, not just a ceiling, so closest-
// to-target beats cheapest-first.
func (p *PostProcessor) selectByBudget(valid []*models.Listing, req models.SearchRequest) ([]*models.Listing, string) {
	min := 0.0
	if req.BudgetMin != nil {
		min = *req.BudgetMin
	}
	max := math.Inf(1)
	if req.BudgetMax != nil {
		max = *req.BudgetMax
	}

	filtered := filterRange(valid, min, max)
	var note string

	if len(filtered) < p.maxResults && req.BudgetMax != nil {
		relaxedMax := max * (1 + p.relaxPct)
		relaxed := filterRange(valid, min, relaxedMax)
		// Adopt only when relaxation strictly buys more options.
		if len(relaxed) > len(filtered) {
			p.logger.Info("Budget relaxed: %d -> %d listings", len(filtered), len(relaxed))
			filtered = relaxed
			note = fmt.Sprintf("Relaxed max budget by %.0f%% (up to $%.0f) to find more options",
				p.relaxPct*100, relaxedMax)
		}
	}

	target := budgetTarget(req, min, max)
	sort.SliceStable(filtered, func(i, j int) bool {
		return math.Abs(filtered[i].PricePerNight-target) < math.Abs(filtered[j].PricePerNight-target)
	})

	if len(filtered) > p.maxResults {
		filtered = filtered[:p.maxResults]
	}
	return filtered, note
}

// budgetTarget is the price the ranking pulls toward: the midpoint when both
// bounds exist, else whichever single bound was given.
func budgetTarget(req models.SearchRequest, min, max float64) float64 {
	switch {
	case req.BudgetMin != nil && req.BudgetMax != nil:
		return (min + max) / 2
	case req.BudgetMax != nil:
		return max
	default:
		return min
	}
}

func filterRange(listings []*models.Listing, min, max float64) []*models.Listing {
	var out []*models.Listing
	for _, l := range listings {
		if l.PricePerNight >= min && l.PricePerNight <= max {
			out = append(out, l)
		}
	}
	return out
}

// selectDiverse handles the no-budget case: a few premium anchors from the
// top of the price sort, a mid-range slice from the middle of the rest,
// then sequential fill. Pure cheapest-first or priciest-first would show a
// lopsided picture of the market.
func (p *PostProcessor) selectDiverse(valid []*models.Listing) []*models.Listing {
	sorted := make([]*models.Listing, len(valid))
	copy(sorted, valid)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PricePerNight > sorted[j].PricePerNight
	})

	seen := utils.NewSeenTracker()
	var selected []*models.Listing
	take := func(l *models.Listing) {
		if len(selected) < p.maxResults && seen.Add(l.Key()) {
			selected = append(selected, l)
		}
	}

	// Premium anchors.
	for i := 0; i < p.anchors && i < len(sorted); i++ {
		take(sorted[i])
	}

	// Mid-range slice centered within the remainder.
	remainder := sorted
	if len(sorted) > p.anchors {
		remainder = sorted[p.anchors:]
	}
	start := (len(remainder) - p.midRange) / 2
	if start < 0 {
		start = 0
	}
	for i := start; i < start+p.midRange && i < len(remainder); i++ {
		take(remainder[i])
	}

	// Sequential fill from the full sort when still short.
	for _, l := range sorted {
		if len(selected) >= p.maxResults {
			break
		}
		take(l)
	}

	return selected
}
