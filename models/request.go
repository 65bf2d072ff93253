package models

import (
	"fmt"
	"time"
)

// Default values applied by Normalize.
const (
	DefaultGuests   = 2
	DefaultCurrency = "USD"
)

// SearchRequest is a normalized accommodation search. It is produced by the
// intent collaborator (or built directly from flags) and treated as immutable
// once it enters the pipeline.
type SearchRequest struct {
	Location  string    `json:"location"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Guests    int       `json:"guests"`
	BudgetMin *float64  `json:"budget_min,omitempty"`
	BudgetMax *float64  `json:"budget_max,omitempty"`
	Currency  string    `json:"currency"`
}

// Normalize fills defaults for optional fields.
func (r *SearchRequest) Normalize() {
	if r.Guests <= 0 {
		r.Guests = DefaultGuests
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
}

// Validate checks the request invariants.
func (r *SearchRequest) Validate() error {
	if r.Location == "" {
		return fmt.Errorf("location is required")
	}
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("check-in and check-out dates are required")
	}
	if !r.CheckOut.After(r.CheckIn) {
		return fmt.Errorf("check-out %s must be after check-in %s",
			r.CheckOut.Format("2006-01-02"), r.CheckIn.Format("2006-01-02"))
	}
	if r.Guests <= 0 {
		return fmt.Errorf("guests must be positive, got %d", r.Guests)
	}
	if r.BudgetMin != nil && *r.BudgetMin < 0 {
		return fmt.Errorf("budget min must be non-negative, got %.2f", *r.BudgetMin)
	}
	if r.BudgetMax != nil && *r.BudgetMax < 0 {
		return fmt.Errorf("budget max must be non-negative, got %.2f", *r.BudgetMax)
	}
	if r.BudgetMin != nil && r.BudgetMax != nil && *r.BudgetMin > *r.BudgetMax {
		return fmt.Errorf("budget min %.2f exceeds budget max %.2f", *r.BudgetMin, *r.BudgetMax)
	}
	return nil
}

// HasBudget reports whether either budget bound was specified.
func (r *SearchRequest) HasBudget() bool {
	return r.BudgetMin != nil || r.BudgetMax != nil
}

// Nights returns the stay length in whole nights.
func (r *SearchRequest) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// SearchContext echoes the request facts a caller needs to interpret a
// ranked result list.
type SearchContext struct {
	Location      string `json:"location"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	HadBudget     bool   `json:"had_budget"`
	BudgetRelaxed bool   `json:"budget_relaxed"`
}
