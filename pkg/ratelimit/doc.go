// Package ratelimit implements a tiered fixed window request counter.
//
// A Tier names a policy (for example "auth" or "api") with a request limit
// per window. Counter tracks one window per (tier, key) pair in a Store and
// answers whether the next request fits:
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	counter, _ := ratelimit.NewCounter(store)
//	res, err := counter.Check(ctx, "user:42", ratelimit.DefaultTiers().MustGet(ratelimit.TierAPI))
//	if err == nil && !res.Allowed {
//		// retry after res.RetryAfter(time.Now())
//	}
//
// # Fixed window semantics
//
// On every check the window is rolled over first when now-start >= window:
// the count is zeroed and the start rebased to now. The request is then
// admitted only while count < limit, and only admitted requests increment
// the count. Remaining is limit-count on success and 0 on denial; ResetAt is
// always start+window. There is no partial decay, so a burst at a window
// boundary may admit up to twice the limit across two adjacent windows.
//
// # Tiers
//
// DefaultTiers provides auth (5 per 15m), api (100 per 1m) and public
// (300 per 1m). LoadTiers merges a YAML file over the defaults:
//
//	tiers:
//	  - name: api
//	    limit: 500
//	    window: 1m
//
// Tiers.Strictest returns the tier with the lowest admitted rate, which the
// admission layer uses for unidentifiable callers when so configured.
//
// # Memory Management
//
// MemoryStore removes expired windows every minute by default; expired
// windows are also reset lazily on their next use, so cleanup is purely a
// memory concern. Disable it with WithCleanupInterval(0).
package ratelimit
