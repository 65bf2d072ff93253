package utils

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*ClientLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewClientLimiter(limit, window)
	l.now = clock.now
	return l, clock
}

func TestLimiterRejectsSixthInWindow(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	// Six requests spread over ten seconds: exactly one rejection.
	var rejections []*RateLimitError
	for i := 0; i < 6; i++ {
		if err := l.Allow("client-a"); err != nil {
			var rlErr *RateLimitError
			require.True(t, errors.As(err, &rlErr))
			rejections = append(rejections, rlErr)
		}
		clock.advance(2 * time.Second)
	}

	require.Len(t, rejections, 1)
	retry := rejections[0].RetryAfter
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)
	// Sixth check ran 10s after the first admission, whose slot frees at 60s.
	assert.Equal(t, 50*time.Second, retry)
}

func TestLimiterPrunesExpiredEntries(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Allow("client-a"))
	}
	require.Error(t, l.Allow("client-a"))

	// Once the window rolls past the earliest entries, capacity returns.
	clock.advance(61 * time.Second)
	assert.NoError(t, l.Allow("client-a"))
}

func TestLimiterIsolatesClients(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)

	require.NoError(t, l.Allow("client-a"))
	require.NoError(t, l.Allow("client-a"))
	require.Error(t, l.Allow("client-a"))

	assert.NoError(t, l.Allow("client-b"), "a saturated client must not affect others")
}

func TestLimiterRejectionDoesNotConsumeCapacity(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	require.NoError(t, l.Allow("client-a"))
	require.NoError(t, l.Allow("client-a"))
	for i := 0; i < 10; i++ {
		require.Error(t, l.Allow("client-a"))
	}

	// Only the two admissions occupy the window; hammering while limited
	// must not extend the wait.
	clock.advance(61 * time.Second)
	assert.NoError(t, l.Allow("client-a"))
}

func TestLimiterReset(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.NoError(t, l.Allow("client-a"))
	require.Error(t, l.Allow("client-a"))

	l.Reset()
	assert.NoError(t, l.Allow("client-a"))
}

func TestLimiterConcurrentAdmissionsNeverOverAdmit(t *testing.T) {
	l := NewClientLimiter(5, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("client-a") == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted)
}
