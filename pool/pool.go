// Package pool provides a generic fixed-concurrency mapper used for
// per-listing detail fetches and review summarization.
package pool

import (
	"context"
	"sync"
)

// Map applies fn to every item with at most limit concurrent invocations.
// Results come back in input order regardless of completion order; errs[i]
// is non-nil when fn failed for items[i]. A mapper may return the zero R
// with a nil error to mean "no result" — callers skip those during merge.
// If ctx dies before every item is dispatched, the remaining slots carry
// the context error.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, index int, item T) (R, error)) ([]R, []error) {
	n := len(items)
	results := make([]R, n)
	errs := make([]error, n)
	if n == 0 {
		return results, errs
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > n {
		limit = n
	}

	// Shared cursor: workers pull the next index until exhausted.
	next := make(chan int)
	go func() {
		defer close(next)
		for i := 0; i < n; i++ {
			select {
			case next <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	dispatched := make([]bool, n)
	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for i := range next {
				dispatched[i] = true
				results[i], errs[i] = fn(ctx, i, items[i])
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range errs {
			if !dispatched[i] {
				errs[i] = err
			}
		}
	}
	return results, errs
}
