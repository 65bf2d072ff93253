package scraper

import "fmt"

// ConnectionError marks a failed backend connect. It is fatal for that
// backend's execution but not for a dual-mode comparison as a whole.
type ConnectionError struct {
	Backend string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connect failed: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
