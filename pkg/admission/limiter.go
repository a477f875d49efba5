package admission

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/gatekeeper/pkg/abuse"
	"github.com/dmitrymomot/gatekeeper/pkg/identity"
	"github.com/dmitrymomot/gatekeeper/pkg/logger"
	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
)

// unresolvedKey is the shared bucket for requests without an identity
// under identity.PolicyStrictest.
const unresolvedKey = "unresolved"

// Limiter combines the block list and the tiered window counter into a
// single admission decision.
type Limiter struct {
	counter  ratelimit.Limiter
	detector *abuse.Detector
	tiers    *ratelimit.Tiers
	resolver *identity.Resolver
	policy   identity.Policy
	recorder Recorder
	now      func() time.Time
	log      *slog.Logger

	quotaStatus      int
	blockedStatus    int
	unresolvedStatus int
}

// New creates a Limiter on top of counter, usually a *ratelimit.Counter.
func New(counter ratelimit.Limiter, detector *abuse.Detector, opts ...Option) (*Limiter, error) {
	if counter == nil {
		return nil, ErrCounterRequired
	}
	if detector == nil {
		return nil, ErrDetectorRequired
	}

	l := &Limiter{
		counter:  counter,
		detector: detector,
		tiers:    ratelimit.DefaultTiers(),
		resolver: identity.NewResolver(),
		policy:   identity.PolicyDeny,
		now:      time.Now,
		log:      slog.New(slog.DiscardHandler),
	}
	defaultStatuses(l)
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(logger.Component("admission"))

	return l, nil
}

// Tiers returns the tier registry.
func (l *Limiter) Tiers() *ratelimit.Tiers { return l.tiers }

// Detector returns the abuse detector.
func (l *Limiter) Detector() *abuse.Detector { return l.detector }

// CheckRateLimit decides whether identifier may make one more request in
// tier. It never fails: store errors admit the request and are logged, a
// tier that does not validate denies it.
//
// An unexpired block on identifier, or on networkAddress when given, denies
// the request without touching the counter. Otherwise one slot of the
// tier's window is consumed; a denial records an abuse violation for
// identifier and networkAddress. A violation that escalates into a block
// takes effect from the next request.
//
// An empty identifier is handled by the unresolved policy.
func (l *Limiter) CheckRateLimit(ctx context.Context, identifier string, tier ratelimit.Tier, networkAddress string) Result {
	res := l.check(ctx, identifier, tier, networkAddress)
	l.record(ctx, identifier, tier, res)
	return res
}

func (l *Limiter) check(ctx context.Context, identifier string, tier ratelimit.Tier, networkAddress string) Result {
	now := l.now()
	addrKey := identity.Network(networkAddress).Key()

	if identifier == "" {
		if l.policy != identity.PolicyStrictest {
			return Result{Unresolved: true, Limit: tier.Limit, Reset: now}
		}
		identifier = unresolvedKey
		tier = l.tiers.Strictest()
	}

	for _, key := range []string{identifier, addrKey} {
		if b, ok := l.detector.Blocked(ctx, key); ok {
			return blockedResult(b, tier)
		}
	}

	if err := tier.Validate(); err != nil {
		l.log.ErrorContext(ctx, "invalid tier, denying request",
			logger.Identity(identifier),
			logger.Tier(tier.Name),
			logger.Error(err))
		return Result{Limit: max(0, tier.Limit), Reset: now.Add(max(0, tier.Window))}
	}

	r, err := l.counter.Check(ctx, identifier, tier)
	if err != nil {
		l.log.ErrorContext(ctx, "rate limit check failed, admitting request",
			logger.Identity(identifier),
			logger.Tier(tier.Name),
			logger.Error(err))
		return Result{Success: true, Limit: tier.Limit, Remaining: tier.Limit, Reset: now.Add(tier.Window)}
	}

	res := Result{
		Success:   r.Allowed,
		Limit:     r.Limit,
		Remaining: r.Remaining,
		Reset:     r.ResetAt,
	}
	if res.Success {
		return res
	}

	l.log.InfoContext(ctx, "rate limit exceeded",
		logger.Identity(identifier),
		logger.Tier(tier.Name),
		logger.IP(networkAddress))

	l.detector.RecordViolation(ctx, identifier)
	if addrKey != "" && addrKey != identifier {
		l.detector.RecordViolation(ctx, addrKey)
	}

	return res
}

func blockedResult(b abuse.Block, tier ratelimit.Tier) Result {
	return Result{
		Blocked:     true,
		BlockReason: b.Reason,
		BlockedBy:   b.Key,
		Limit:       tier.Limit,
		Reset:       b.BlockedUntil,
	}
}

func (l *Limiter) record(ctx context.Context, identifier string, tier ratelimit.Tier, res Result) {
	if l.recorder == nil {
		return
	}

	ev := Event{
		Identity: identifier,
		Tier:     tier.Name,
		Outcome:  OutcomeOf(res),
		At:       l.now(),
	}
	if err := l.recorder.Record(ctx, ev); err != nil {
		l.log.WarnContext(ctx, "failed to record admission event", logger.Error(err))
	}
}
