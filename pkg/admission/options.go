package admission

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/gatekeeper/pkg/identity"
	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
)

// Option configures a Limiter.
type Option func(*Limiter)

// WithTiers sets the tier registry used by Middleware and by the strictest
// policy. Default is ratelimit.DefaultTiers.
func WithTiers(tiers *ratelimit.Tiers) Option {
	return func(l *Limiter) {
		if tiers != nil {
			l.tiers = tiers
		}
	}
}

// WithResolver sets how request identities are derived.
func WithResolver(r *identity.Resolver) Option {
	return func(l *Limiter) {
		if r != nil {
			l.resolver = r
		}
	}
}

// WithUnresolvedPolicy sets the handling of requests without an identity.
// Default is identity.PolicyDeny.
func WithUnresolvedPolicy(p identity.Policy) Option {
	return func(l *Limiter) {
		l.policy = p
	}
}

// WithQuotaStatus sets the status for ordinary quota denials. Default is 429.
func WithQuotaStatus(status int) Option {
	return func(l *Limiter) {
		if status > 0 {
			l.quotaStatus = status
		}
	}
}

// WithBlockedStatus sets the status for blocked identities. Default is 403.
func WithBlockedStatus(status int) Option {
	return func(l *Limiter) {
		if status > 0 {
			l.blockedStatus = status
		}
	}
}

// WithUnresolvedStatus sets the status for requests denied by
// identity.PolicyDeny. Default is 403.
func WithUnresolvedStatus(status int) Option {
	return func(l *Limiter) {
		if status > 0 {
			l.unresolvedStatus = status
		}
	}
}

// WithRecorder sets the decision event sink.
func WithRecorder(r Recorder) Option {
	return func(l *Limiter) {
		l.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock overrides the time source. Intended for tests; the counter and
// detector keep their own clocks.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func defaultStatuses(l *Limiter) {
	l.quotaStatus = http.StatusTooManyRequests
	l.blockedStatus = http.StatusForbidden
	l.unresolvedStatus = http.StatusForbidden
}
