package ratelimit

import (
	"context"
	"time"
)

// Counter is a per-key, per-tier fixed window request counter.
//
// A window starts on the first request for a key and ends window later; the
// next request after that resets the count to zero. A burst straddling the
// boundary can therefore admit up to 2×limit requests across two adjacent
// windows.
type Counter struct {
	store Store
	now   func() time.Time
}

// CounterOption configures a Counter.
type CounterOption func(*Counter)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) CounterOption {
	return func(c *Counter) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCounter creates a Counter backed by store.
func NewCounter(store Store, opts ...CounterOption) (*Counter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &Counter{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Check consumes one slot of the tier's window for key if one is available.
func (c *Counter) Check(ctx context.Context, key string, tier Tier) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if err := tier.Validate(); err != nil {
		return nil, err
	}

	w, err := c.store.Take(ctx, TierKey(tier.Name, key), tier.Limit, tier.Window, c.now())
	if err != nil {
		return nil, err
	}

	remaining := 0
	if w.Allowed {
		remaining = tier.Limit - w.Count
	}

	return &Result{
		Allowed:   w.Allowed,
		Limit:     tier.Limit,
		Remaining: remaining,
		ResetAt:   w.End(tier.Window),
	}, nil
}

// Status returns the tier's window state for key without consuming a slot.
func (c *Counter) Status(ctx context.Context, key string, tier Tier) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if err := tier.Validate(); err != nil {
		return nil, err
	}

	w, err := c.store.Peek(ctx, TierKey(tier.Name, key), tier.Window, c.now())
	if err != nil {
		return nil, err
	}

	remaining := max(0, tier.Limit-w.Count)
	return &Result{
		Allowed:   remaining > 0,
		Limit:     tier.Limit,
		Remaining: remaining,
		ResetAt:   w.End(tier.Window),
	}, nil
}

// Reset clears the tier's window for key.
func (c *Counter) Reset(ctx context.Context, key string, tier Tier) error {
	if key == "" {
		return ErrKeyRequired
	}
	return c.store.Delete(ctx, TierKey(tier.Name, key))
}
