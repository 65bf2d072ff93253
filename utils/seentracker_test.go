package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenTrackerAdd(t *testing.T) {
	tracker := NewSeenTracker()

	assert.True(t, tracker.Add("https://example.com/rooms/1"))
	assert.False(t, tracker.Add("https://example.com/rooms/1"))
	assert.True(t, tracker.Add("https://example.com/rooms/2"))
	assert.Equal(t, 2, tracker.Count())
}
