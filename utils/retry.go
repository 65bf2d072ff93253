package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to attempts times with a fixed delay between attempts.
// The delay does not grow; scraping targets punish bursts, not persistence.
// A cancelled context aborts the wait and returns the context error.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error, logger *Logger) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying (attempt %d/%d) after %v...", attempt+1, attempts, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			logger.Error("Attempt %d failed: %v", attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", attempts, lastErr)
}
