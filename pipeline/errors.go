package pipeline

import (
	"fmt"
	"time"
)

// ConfigError marks missing required configuration for a backend the
// resolved mode needs. Fatal, no retry — except in dual mode, where the
// pipeline degrades to whichever backend is configured.
type ConfigError struct {
	Backend string
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("backend %q is not configured: %s is required", e.Backend, e.Missing)
}

// TimeoutError marks the whole-pipeline deadline being exceeded. The run is
// abandoned; the caller may retry.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("search did not finish within %s, please try again", e.After)
}
