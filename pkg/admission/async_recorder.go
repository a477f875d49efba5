package admission

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/gatekeeper/pkg/logger"
)

const (
	defaultRecordBuffer  = 1024
	defaultRecordTimeout = 500 * time.Millisecond
)

// AsyncRecorder moves delivery to a slow Recorder, such as RedisRecorder,
// off the request path. Record only enqueues into a bounded buffer; Run
// forwards queued events one at a time, each with its own timeout. Events
// that do not fit the buffer, or arrive after Close, are dropped and
// counted.
type AsyncRecorder struct {
	next    Recorder
	events  chan Event
	timeout time.Duration
	log     *slog.Logger

	dropped   atomic.Int64
	closed    chan struct{}
	closeOnce sync.Once
}

// AsyncRecorderOption configures an AsyncRecorder.
type AsyncRecorderOption func(*asyncRecorderConfig)

type asyncRecorderConfig struct {
	buffer  int
	timeout time.Duration
	log     *slog.Logger
}

// WithBufferSize sets how many events may wait for delivery. Default is 1024.
func WithBufferSize(n int) AsyncRecorderOption {
	return func(c *asyncRecorderConfig) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithRecordTimeout bounds each forwarded Record call. Default is 500ms.
func WithRecordTimeout(d time.Duration) AsyncRecorderOption {
	return func(c *asyncRecorderConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRecorderLogger sets the logger for delivery failures.
func WithRecorderLogger(log *slog.Logger) AsyncRecorderOption {
	return func(c *asyncRecorderConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// NewAsyncRecorder wraps next. Nothing is delivered until Run is started.
func NewAsyncRecorder(next Recorder, opts ...AsyncRecorderOption) *AsyncRecorder {
	cfg := asyncRecorderConfig{
		buffer:  defaultRecordBuffer,
		timeout: defaultRecordTimeout,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &AsyncRecorder{
		next:    next,
		events:  make(chan Event, cfg.buffer),
		timeout: cfg.timeout,
		log:     cfg.log.With(logger.Component("admission.recorder")),
		closed:  make(chan struct{}),
	}
}

// Record implements Recorder. It never blocks and never fails.
func (r *AsyncRecorder) Record(_ context.Context, ev Event) error {
	if r.next == nil {
		return nil
	}

	select {
	case <-r.closed:
		r.dropped.Add(1)
		return nil
	default:
	}

	select {
	case r.events <- ev:
	default:
		r.dropped.Add(1)
	}
	return nil
}

// Dropped returns how many events were discarded.
func (r *AsyncRecorder) Dropped() int64 { return r.dropped.Load() }

// Pending returns how many events wait for delivery.
func (r *AsyncRecorder) Pending() int { return len(r.events) }

// Run returns a function suitable for errgroup that delivers queued events
// until ctx is done or Close is called. Events still buffered at that point
// are not delivered.
func (r *AsyncRecorder) Run(ctx context.Context) func() error {
	return func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-r.closed:
				return nil
			case ev := <-r.events:
				r.deliver(ctx, ev)
			}
		}
	}
}

// Close stops Run. Later events are dropped.
func (r *AsyncRecorder) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}

func (r *AsyncRecorder) deliver(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.next.Record(ctx, ev); err != nil {
		r.log.WarnContext(ctx, "failed to deliver admission event",
			logger.Tier(ev.Tier),
			logger.Error(err))
	}
}
