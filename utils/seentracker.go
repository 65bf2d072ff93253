package utils

import "sync"

// SeenTracker tracks identity keys to avoid duplicates. Used for listing
// dedupe and for page-level URL dedupe inside backends.
type SeenTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSeenTracker creates a new tracker.
func NewSeenTracker() *SeenTracker {
	return &SeenTracker{seen: make(map[string]struct{})}
}

// Add returns true if the key is new (not seen before), false if duplicate.
func (t *SeenTracker) Add(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.seen[key]; exists {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}

// Count returns the number of tracked keys.
func (t *SeenTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
