package abuse

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/gatekeeper/pkg/logger"
)

// Block is an escalated, time-boxed denial for one identity.
type Block struct {
	Key          string
	Reason       string
	Violations   int
	BlockedAt    time.Time
	BlockedUntil time.Time
}

// Active reports whether the block still applies at now.
func (b Block) Active(now time.Time) bool {
	return now.Before(b.BlockedUntil)
}

type violations struct {
	count   int
	firstAt time.Time
}

// Detector counts rate limit violations per identity and blocks identities
// that reach the threshold within the detection window.
//
// Expired blocks and stale violation records are ignored lazily; the
// optional sweep only reclaims memory.
type Detector struct {
	cfg Config
	now func() time.Time
	log *slog.Logger

	mu         sync.Mutex
	violations map[string]*violations
	blocks     map[string]Block

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the logger used to report new blocks.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.log = l
		}
	}
}

// WithCleanupInterval enables a background sweep of expired records.
func WithCleanupInterval(interval time.Duration) Option {
	return func(d *Detector) {
		d.cleanupInterval = interval
	}
}

// New creates a Detector.
func New(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		cfg:         cfg,
		now:         time.Now,
		log:         slog.New(slog.DiscardHandler),
		violations:  make(map[string]*violations),
		blocks:      make(map[string]Block),
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.cleanupInterval > 0 {
		go d.cleanupLoop()
	}

	return d, nil
}

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// RecordViolation registers one violation for key. When the violation count
// within the detection window reaches the threshold a block is created and
// returned with true. If key is already blocked the existing block is returned.
func (d *Detector) RecordViolation(ctx context.Context, key string) (Block, bool) {
	if key == "" {
		return Block{}, false
	}

	now := d.now()

	d.mu.Lock()
	if b, ok := d.activeBlock(key, now); ok {
		d.mu.Unlock()
		return b, true
	}

	v, ok := d.violations[key]
	if !ok || now.Sub(v.firstAt) >= d.cfg.Window {
		v = &violations{firstAt: now}
		d.violations[key] = v
	}
	v.count++

	if v.count < d.cfg.Threshold {
		d.mu.Unlock()
		return Block{}, false
	}

	b := Block{
		Key:          key,
		Reason:       fmt.Sprintf("exceeded rate limit %d times within %s", v.count, d.cfg.Window),
		Violations:   v.count,
		BlockedAt:    now,
		BlockedUntil: now.Add(d.cfg.BlockDuration),
	}
	d.blocks[key] = b
	delete(d.violations, key)
	d.mu.Unlock()

	d.log.WarnContext(ctx, "identity blocked",
		logger.Component("abuse"),
		logger.Identity(key),
		logger.Reason(b.Reason),
		slog.Time("blocked_until", b.BlockedUntil),
	)

	return b, true
}

// Blocked returns the active block for key, if any.
func (d *Detector) Blocked(ctx context.Context, key string) (Block, bool) {
	if key == "" {
		return Block{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeBlock(key, d.now())
}

// Block blocks key for duration regardless of its violation history.
// A non-positive duration uses the configured block duration.
func (d *Detector) Block(ctx context.Context, key, reason string, duration time.Duration) (Block, error) {
	if key == "" {
		return Block{}, ErrKeyRequired
	}
	if duration <= 0 {
		duration = d.cfg.BlockDuration
	}
	if reason == "" {
		reason = "blocked by administrator"
	}

	now := d.now()
	b := Block{
		Key:          key,
		Reason:       reason,
		BlockedAt:    now,
		BlockedUntil: now.Add(duration),
	}

	d.mu.Lock()
	d.blocks[key] = b
	delete(d.violations, key)
	d.mu.Unlock()

	d.log.InfoContext(ctx, "identity blocked manually",
		logger.Component("abuse"),
		logger.Identity(key),
		logger.Reason(reason),
	)
	return b, nil
}

// Unblock removes the block and violation history of key. It reports
// whether an active block was removed.
func (d *Detector) Unblock(ctx context.Context, key string) bool {
	d.mu.Lock()
	_, active := d.activeBlock(key, d.now())
	delete(d.blocks, key)
	delete(d.violations, key)
	d.mu.Unlock()

	if active {
		d.log.InfoContext(ctx, "identity unblocked", logger.Component("abuse"), logger.Identity(key))
	}
	return active
}

// Violations returns the number of violations recorded for key in the current detection window.
func (d *Detector) Violations(ctx context.Context, key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.violations[key]
	if !ok || d.now().Sub(v.firstAt) >= d.cfg.Window {
		return 0
	}
	return v.count
}

// Blocks returns all active blocks ordered by expiry.
func (d *Detector) Blocks(ctx context.Context) []Block {
	now := d.now()

	d.mu.Lock()
	out := make([]Block, 0, len(d.blocks))
	for _, b := range d.blocks {
		if b.Active(now) {
			out = append(out, b)
		}
	}
	d.mu.Unlock()

	slices.SortFunc(out, func(a, b Block) int {
		if c := a.BlockedUntil.Compare(b.BlockedUntil); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// Sweep drops expired blocks and stale violation records, returning how
// many entries were removed.
func (d *Detector) Sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, b := range d.blocks {
		if !b.Active(now) {
			delete(d.blocks, key)
			removed++
		}
	}
	for key, v := range d.violations {
		if now.Sub(v.firstAt) >= d.cfg.Window {
			delete(d.violations, key)
			removed++
		}
	}
	return removed
}

// Close stops the background sweep. Safe to call multiple times.
func (d *Detector) Close() error {
	d.closeOnce.Do(func() {
		close(d.stopCleanup)
	})
	return nil
}

// activeBlock must be called with d.mu held. Expired blocks are deleted.
func (d *Detector) activeBlock(key string, now time.Time) (Block, bool) {
	b, ok := d.blocks[key]
	if !ok {
		return Block{}, false
	}
	if !b.Active(now) {
		delete(d.blocks, key)
		return Block{}, false
	}
	return b, true
}

func (d *Detector) cleanupLoop() {
	ticker := time.NewTicker(d.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Sweep(d.now())
		case <-d.stopCleanup:
			return
		}
	}
}
