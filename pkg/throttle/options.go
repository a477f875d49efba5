package throttle

import (
	"log/slog"
	"time"
)

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger for queue and drain events.
func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithDrainInterval sets how often Run checks for window rollover.
// Without Run, rollover is only detected by calls into the limiter.
func WithDrainInterval(interval time.Duration) Option {
	return func(l *Limiter) {
		if interval > 0 {
			l.drainInterval = interval
		}
	}
}
