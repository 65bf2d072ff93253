package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return nil
	}, NewTestLogger())

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversOnSecondAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}, NewTestLogger())

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cause := errors.New("persistent failure")
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return cause
	}, NewTestLogger())

	require.Error(t, err)
	assert.Equal(t, 2, calls, "fixed attempt count, no extra tries")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "all 2 attempts failed")
}

func TestRetryAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 3, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, NewTestLogger())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation interrupts the inter-attempt wait")
}
