package services

import (
	"math"
	"sort"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/utils"

	"github.com/google/uuid"
)

// Evaluator scores dual-mode backend executions and elects a winner. All
// metric math is deterministic given identical inputs: no randomness and no
// wall-clock reads beyond the timings already captured.
type Evaluator struct {
	logger        *utils.Logger
	targetResults int
	targetTime    time.Duration
}

// NewEvaluator creates an Evaluator from config.
func NewEvaluator(cfg *config.Config, logger *utils.Logger) *Evaluator {
	return &Evaluator{
		logger:        logger,
		targetResults: cfg.TargetResultCount,
		targetTime:    cfg.TargetTime,
	}
}

// Evaluate builds the immutable comparison record for one dual-mode run.
func (e *Evaluator) Evaluate(req models.SearchRequest, results map[string]*models.BackendExecutionResult) *models.EvalResult {
	metrics := make(map[string]models.EvalMetrics, len(results))
	for name, r := range results {
		metrics[name] = e.Score(r)
	}

	eval := &models.EvalResult{
		SessionID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Request:   req,
		Results:   results,
		Comparison: models.Comparison{
			Winner:  e.pickWinner(results, metrics),
			Metrics: metrics,
		},
	}
	e.logger.Info("Evaluation %s: winner=%s", eval.SessionID, eval.Comparison.Winner)
	return eval
}

// Score computes the three 0-100 metrics for one backend execution.
func (e *Evaluator) Score(r *models.BackendExecutionResult) models.EvalMetrics {
	return models.EvalMetrics{
		Completeness: e.completeness(r),
		Accuracy:     e.accuracy(r),
		Speed:        e.speed(r),
	}
}

func (e *Evaluator) completeness(r *models.BackendExecutionResult) int {
	if e.targetResults <= 0 {
		return 0
	}
	score := int(math.Round(100 * float64(len(r.Listings)) / float64(e.targetResults)))
	return clamp(score)
}

// accuracy averages a per-listing field-completeness score over the four
// fields a usable listing needs: title, url, currency, positive price.
func (e *Evaluator) accuracy(r *models.BackendExecutionResult) int {
	if len(r.Listings) == 0 {
		return 0
	}
	var sum float64
	for _, l := range r.Listings {
		present := 0
		if l.Title != "" {
			present++
		}
		if l.URL != "" {
			present++
		}
		if l.Currency != "" {
			present++
		}
		if l.PricePerNight > 0 {
			present++
		}
		sum += float64(present) / 4
	}
	return clamp(int(math.Round(100 * sum / float64(len(r.Listings)))))
}

func (e *Evaluator) speed(r *models.BackendExecutionResult) int {
	target := e.targetTime.Seconds()
	if target <= 0 {
		return 0
	}
	total := 1 - r.TotalTime.Seconds()/target
	first := 1 - r.TimeToFirstResult.Seconds()/target
	raw := 0.7*total + 0.3*first
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}
	return clamp(int(math.Round(100 * raw)))
}

// pickWinner applies the selection rule: a sole producer wins by default,
// no producers tie, otherwise the composite scores decide unless they sit
// within one point of each other.
func (e *Evaluator) pickWinner(results map[string]*models.BackendExecutionResult, metrics map[string]models.EvalMetrics) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) != 2 {
		return models.WinnerTie
	}
	a, b := names[0], names[1]

	aProduced := len(results[a].Listings) > 0
	bProduced := len(results[b].Listings) > 0
	switch {
	case aProduced && !bProduced:
		return a
	case bProduced && !aProduced:
		return b
	case !aProduced && !bProduced:
		return models.WinnerTie
	}

	diff := metrics[a].Composite() - metrics[b].Composite()
	if math.Abs(diff) < 1 {
		return models.WinnerTie
	}
	if diff > 0 {
		return a
	}
	return b
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
