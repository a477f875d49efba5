package ratelimit

import (
	"context"
	"time"
)

// Result contains the result of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the current window ends.
	ResetAt time.Time
}

// RetryAfter returns how long to wait, measured from now, before the next
// request can be allowed. Returns 0 if the request was allowed or the
// window already ended.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	return max(0, r.ResetAt.Sub(now))
}

// Window is the state of one fixed window counter.
type Window struct {
	// Count is the number of admitted requests in the window.
	Count int

	// Start is the time the window began.
	Start time.Time

	// Allowed reports whether the Take call that produced this window admitted the request.
	Allowed bool
}

// End returns the time the window ends.
func (w Window) End(size time.Duration) time.Time {
	return w.Start.Add(size)
}

// Store defines the interface for fixed window storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Take rolls the window for key over when now-start >= window, then
	// increments the count only if it is below limit.
	Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, error)

	// Peek returns the window for key without consuming quota. An expired or
	// missing window is reported as a fresh empty window starting at now.
	Peek(ctx context.Context, key string, window time.Duration, now time.Time) (Window, error)

	// Delete removes the given key from the store.
	Delete(ctx context.Context, key string) error
}

// Limiter is a tiered fixed window limiter. Counter implements it.
type Limiter interface {
	// Check consumes one slot of the tier's window for key if one is available.
	Check(ctx context.Context, key string, tier Tier) (*Result, error)

	// Status returns the tier's window state for key without consuming a slot.
	Status(ctx context.Context, key string, tier Tier) (*Result, error)

	// Reset clears the tier's window for key.
	Reset(ctx context.Context, key string, tier Tier) error
}
