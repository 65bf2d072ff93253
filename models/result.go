package models

import "time"

// BackendExecutionResult captures one backend's raw output plus timing and
// error metadata for a single search run. Errors is append-only and
// non-exhaustive: it records human-readable failures from connect, search,
// enrich and disconnect without implying the whole run failed.
type BackendExecutionResult struct {
	Backend           string        `json:"backend"`
	Listings          []*Listing    `json:"listings"`
	TimeToFirstResult time.Duration `json:"time_to_first_result"`
	TotalTime         time.Duration `json:"total_time"`
	Errors            []string      `json:"errors,omitempty"`
}

// EmptyWithErrors reports whether the run produced nothing and recorded at
// least one failure — the condition that triggers single-mode failover.
func (r *BackendExecutionResult) EmptyWithErrors() bool {
	return len(r.Listings) == 0 && len(r.Errors) > 0
}

// PostProcessResult is the ranked, budget-aware output for one backend's
// listings. Listings never exceeds the configured maximum; Notes describes
// any policy relaxation or failover applied along the way.
type PostProcessResult struct {
	Listings []*Listing    `json:"listings"`
	Context  SearchContext `json:"context"`
	Notes    []string      `json:"notes,omitempty"`
}
