package admission

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Outcome classifies a decision for reporting.
type Outcome string

const (
	OutcomeAllowed    Outcome = "allowed"
	OutcomeDenied     Outcome = "denied"
	OutcomeBlocked    Outcome = "blocked"
	OutcomeUnresolved Outcome = "unresolved"
)

// OutcomeOf returns the outcome of r.
func OutcomeOf(r Result) Outcome {
	switch {
	case r.Success:
		return OutcomeAllowed
	case r.Blocked:
		return OutcomeBlocked
	case r.Unresolved:
		return OutcomeUnresolved
	default:
		return OutcomeDenied
	}
}

// Event describes one admission decision.
type Event struct {
	Identity string
	Tier     string
	Outcome  Outcome
	At       time.Time
}

// Recorder receives decision events. Recording is best effort: errors are
// logged and never change the decision, and recorded data is never read
// back by the limiter.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// MultiRecorder fans each event out to several recorders.
type MultiRecorder []Recorder

// Record implements Recorder. Every recorder is called; errors are joined.
func (m MultiRecorder) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Counters is a per-outcome tally.
type Counters map[Outcome]int64

// MemoryRecorder keeps decision tallies in process memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	total  Counters
	byTier map[string]Counters
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		total:  make(Counters),
		byTier: make(map[string]Counters),
	}
}

// Record implements Recorder.
func (m *MemoryRecorder) Record(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total[ev.Outcome]++
	c, ok := m.byTier[ev.Tier]
	if !ok {
		c = make(Counters)
		m.byTier[ev.Tier] = c
	}
	c[ev.Outcome]++
	return nil
}

// Total returns a copy of the overall tally.
func (m *MemoryRecorder) Total() Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.total)
}

// ByTier returns a copy of the per-tier tallies.
func (m *MemoryRecorder) ByTier() map[string]Counters {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Counters, len(m.byTier))
	for tier, c := range m.byTier {
		out[tier] = maps.Clone(c)
	}
	return out
}

// RedisRecorder writes decision tallies into Redis hashes:
//
//	<prefix>:total               outcome -> count
//	<prefix>:tier:<name>         outcome -> count
//	<prefix>:minute:<yyyymmddhhmm> outcome -> count, expires after TTL
type RedisRecorder struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisRecorderOption configures a RedisRecorder.
type RedisRecorderOption func(*RedisRecorder)

// WithKeyPrefix sets the key prefix. Default is "gatekeeper:admission".
func WithKeyPrefix(prefix string) RedisRecorderOption {
	return func(r *RedisRecorder) {
		if p := strings.Trim(prefix, ":"); p != "" {
			r.prefix = p
		}
	}
}

// WithBucketTTL sets how long per-minute buckets are kept. Default is 24h.
func WithBucketTTL(ttl time.Duration) RedisRecorderOption {
	return func(r *RedisRecorder) {
		r.ttl = ttl
	}
}

// NewRedisRecorder creates a RedisRecorder on client.
func NewRedisRecorder(client redis.UniversalClient, opts ...RedisRecorderOption) *RedisRecorder {
	r := &RedisRecorder{
		client: client,
		prefix: "gatekeeper:admission",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements Recorder.
func (r *RedisRecorder) Record(ctx context.Context, ev Event) error {
	if r == nil || r.client == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)

	pipe := r.client.Pipeline()
	pipe.HIncrBy(ctx, r.TotalKey(), field, 1)
	if ev.Tier != "" {
		pipe.HIncrBy(ctx, r.TierKey(ev.Tier), field, 1)
	}

	bucket := r.MinuteKey(at)
	pipe.HIncrBy(ctx, bucket, field, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucket, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record admission event: %w", err)
	}
	return nil
}

// TotalKey returns the key of the overall tally hash.
func (r *RedisRecorder) TotalKey() string { return r.prefix + ":total" }

// TierKey returns the key of the tally hash for tier.
func (r *RedisRecorder) TierKey(tier string) string { return r.prefix + ":tier:" + tier }

// MinuteKey returns the key of the per-minute bucket containing at.
func (r *RedisRecorder) MinuteKey(at time.Time) string {
	return r.prefix + ":minute:" + at.UTC().Format("200601021504")
}
