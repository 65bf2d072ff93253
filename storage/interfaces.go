package storage

import "staysearch/models"

// ListingSink persists a final ranked listing set. Persistence is an
// external concern: sinks are driven from main, never from the pipeline.
type ListingSink interface {
	SaveListings(ctx models.SearchContext, listings []*models.Listing) error
	Close() error
}

// EvalSink persists dual-mode evaluation runs.
type EvalSink interface {
	SaveEval(eval *models.EvalResult) error
	Close() error
}
