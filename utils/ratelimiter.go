package utils

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitError is the structured rejection returned when a client exceeds
// its window. It is a signal, not a fault: RetryAfter tells the client when
// the oldest request in its window expires.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter.Round(time.Second))
}

// ClientLimiter admits at most limit requests per client id per sliding
// window. It is the only cross-request shared mutable state in the process;
// every admission check is a read-modify-write under one lock so concurrent
// requests from the same client are never undercounted.
type ClientLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time // injectable for tests
}

// NewClientLimiter creates a limiter admitting limit requests per window.
func NewClientLimiter(limit int, window time.Duration) *ClientLimiter {
	return &ClientLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records and admits a request from clientID, or returns a
// *RateLimitError carrying the retry-after duration. The client's window is
// pruned to live entries on every check.
func (l *ClientLimiter) Allow(clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	live := l.hits[clientID][:0]
	for _, t := range l.hits[clientID] {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}

	if len(live) >= l.limit {
		l.hits[clientID] = live
		retryAfter := live[0].Add(l.window).Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Millisecond
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	l.hits[clientID] = append(live, now)
	return nil
}

// Reset clears all per-client state. Intended for tests.
func (l *ClientLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = make(map[string][]time.Time)
}
