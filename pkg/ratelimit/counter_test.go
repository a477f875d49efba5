package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newCounter(t *testing.T, clock *fakeClock) *ratelimit.Counter {
	t.Helper()
	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	counter, err := ratelimit.NewCounter(store, ratelimit.WithClock(clock.Now))
	require.NoError(t, err)
	return counter
}

func TestNewCounter(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.NewCounter(nil)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)
}

func TestCounter_Check(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tier := ratelimit.Tier{Name: "test", Limit: 3, Window: time.Minute}

	t.Run("admits up to limit and counts each call", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		counter := newCounter(t, clock)

		for i := 1; i <= tier.Limit; i++ {
			res, err := counter.Check(ctx, "user:1", tier)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, tier.Limit, res.Limit)
			assert.Equal(t, tier.Limit-i, res.Remaining)
			assert.Equal(t, clock.Now().Add(tier.Window), res.ResetAt)
		}

		res, err := counter.Check(ctx, "user:1", tier)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("denials do not consume quota", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		counter := newCounter(t, clock)

		for range tier.Limit + 5 {
			_, err := counter.Check(ctx, "user:2", tier)
			require.NoError(t, err)
		}

		status, err := counter.Status(ctx, "user:2", tier)
		require.NoError(t, err)
		assert.Equal(t, 0, status.Remaining)
		assert.False(t, status.Allowed)
	})

	t.Run("window rollover resets count and rebases start", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		counter := newCounter(t, clock)

		first, err := counter.Check(ctx, "user:3", tier)
		require.NoError(t, err)
		for range tier.Limit {
			_, _ = counter.Check(ctx, "user:3", tier)
		}

		clock.Advance(tier.Window)

		res, err := counter.Check(ctx, "user:3", tier)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, tier.Limit-1, res.Remaining)
		assert.Equal(t, first.ResetAt.Add(tier.Window), res.ResetAt)
	})

	t.Run("reset stays fixed within a window", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		counter := newCounter(t, clock)

		first, err := counter.Check(ctx, "user:4", tier)
		require.NoError(t, err)

		clock.Advance(30 * time.Second)
		second, err := counter.Check(ctx, "user:4", tier)
		require.NoError(t, err)
		assert.Equal(t, first.ResetAt, second.ResetAt)
	})

	t.Run("boundary burst admits up to twice the limit", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		counter := newCounter(t, clock)

		_, err := counter.Check(ctx, "user:5", tier)
		require.NoError(t, err)
		clock.Advance(tier.Window - time.Millisecond)

		admitted := 1
		for range tier.Limit {
			if res, _ := counter.Check(ctx, "user:5", tier); res.Allowed {
				admitted++
			}
		}
		clock.Advance(time.Millisecond)
		for range tier.Limit {
			if res, _ := counter.Check(ctx, "user:5", tier); res.Allowed {
				admitted++
			}
		}
		assert.Equal(t, 2*tier.Limit, admitted)
	})

	t.Run("tiers and keys are independent", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		counter := newCounter(t, clock)
		other := ratelimit.Tier{Name: "other", Limit: 1, Window: time.Minute}

		for range tier.Limit {
			_, _ = counter.Check(ctx, "user:6", tier)
		}

		res, err := counter.Check(ctx, "user:6", other)
		require.NoError(t, err)
		assert.True(t, res.Allowed)

		res, err = counter.Check(ctx, "user:7", tier)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		counter := newCounter(t, newFakeClock())

		_, err := counter.Check(ctx, "", tier)
		assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)

		_, err = counter.Check(ctx, "k", ratelimit.Tier{Name: "bad", Limit: 0, Window: time.Second})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

		_, err = counter.Check(ctx, "k", ratelimit.Tier{Name: "bad", Limit: 1})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
	})
}

func TestCounter_StatusAndReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tier := ratelimit.Tier{Name: "test", Limit: 2, Window: time.Minute}
	clock := newFakeClock()
	counter := newCounter(t, clock)

	status, err := counter.Status(ctx, "ip:1.2.3.4", tier)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 2, status.Remaining)

	_, err = counter.Check(ctx, "ip:1.2.3.4", tier)
	require.NoError(t, err)

	status, err = counter.Status(ctx, "ip:1.2.3.4", tier)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Remaining)

	require.NoError(t, counter.Reset(ctx, "ip:1.2.3.4", tier))

	status, err = counter.Status(ctx, "ip:1.2.3.4", tier)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Remaining)
}

func TestCounter_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tier := ratelimit.Tier{Name: "test", Limit: 50, Window: time.Hour}
	counter := newCounter(t, newFakeClock())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := counter.Check(ctx, "shared", tier)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, tier.Limit, allowed)
}

func TestCounter_ImplementsLimiter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	var limiter ratelimit.Limiter = newCounter(t, clock)
	tier := ratelimit.Tier{Name: "iface", Limit: 1, Window: time.Second}

	res, err := limiter.Check(ctx, "k", tier)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Check(ctx, "k", tier)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter(clock.Now()))

	require.NoError(t, limiter.Reset(ctx, "k", tier))
	res, err = limiter.Status(ctx, "k", tier)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)
}

func TestResult_RetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Now()

	allowed := ratelimit.Result{Allowed: true, ResetAt: now.Add(time.Minute)}
	assert.Zero(t, allowed.RetryAfter(now))

	denied := ratelimit.Result{ResetAt: now.Add(5 * time.Second)}
	assert.Equal(t, 5*time.Second, denied.RetryAfter(now))

	past := ratelimit.Result{ResetAt: now.Add(-time.Second)}
	assert.Zero(t, past.RetryAfter(now))
}
