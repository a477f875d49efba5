package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/gatekeeper/pkg/async"
	"github.com/dmitrymomot/gatekeeper/pkg/logger"
)

// Task is a unit of work guarded by the limiter.
type Task func(ctx context.Context) (any, error)

// State is a read-only snapshot of the current window and queue.
type State struct {
	RequestCount   int           `json:"request_count"`
	MaxRequests    int           `json:"max_requests"`
	Window         time.Duration `json:"window"`
	TimeUntilReset time.Duration `json:"time_until_reset"`
	QueueSize      int           `json:"queue_size"`
}

// Stats are cumulative counters since construction or the last Reset.
type Stats struct {
	// TotalRequests counts every Execute call.
	TotalRequests int64 `json:"total_requests"`
	// RateLimited counts Execute calls that were queued or rejected as queue full.
	RateLimited int64 `json:"rate_limited"`
	// Executed counts tasks that actually ran through Execute.
	Executed int64 `json:"executed"`
	// Rejected counts calls and queued tasks that never ran.
	Rejected int64 `json:"rejected"`
}

type queuedTask struct {
	ctx        context.Context
	enqueuedAt time.Time
	task       Task
	promise    *async.Promise[any]
}

// Limiter is a fixed window limiter with a bounded FIFO wait queue.
//
// Calls within the window quota run immediately in the caller goroutine.
// Calls beyond it wait in the queue until a later window frees capacity.
// Each drained batch starts its tasks together, in enqueue order, and their
// futures settle in enqueue order: a slow task holds back the settlement of
// the tasks queued after it, never their execution. Calls beyond the queue
// capacity fail with ErrQueueFull.
//
// Window rollover is evaluated lazily at the start of every method, so the
// limiter needs no background goroutine. Run adds a periodic check for
// callers that want queued tasks drained without further traffic.
type Limiter struct {
	cfg           Config
	now           func() time.Time
	log           *slog.Logger
	drainInterval time.Duration

	mu          sync.Mutex
	count       int
	windowStart time.Time
	queue       []*queuedTask
	stats       Stats
	lastBatch   chan struct{}
	closed      bool
}

// New creates a Limiter.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		cfg:           cfg,
		now:           time.Now,
		log:           slog.New(slog.DiscardHandler),
		drainInterval: time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(logger.Component("throttle"))
	l.windowStart = l.now()

	return l, nil
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config { return l.cfg }

// CanProceed reports whether a call made now would run immediately.
func (l *Limiter) CanProceed() bool {
	l.mu.Lock()
	start := l.advanceLocked()
	ok := l.count < l.cfg.MaxRequests
	l.mu.Unlock()

	start()
	return ok
}

// IncrementCount consumes one slot of the current window unconditionally.
func (l *Limiter) IncrementCount() {
	l.mu.Lock()
	start := l.advanceLocked()
	l.count++
	l.mu.Unlock()

	start()
}

// Execute runs task under the window quota.
//
// The returned future is already settled when the task ran immediately or
// the call was rejected. Otherwise it settles after the task is drained in a
// later window, with whatever the task returned. Errors from task are passed
// through unchanged.
func (l *Limiter) Execute(ctx context.Context, task Task) *async.Future[any] {
	if task == nil {
		return async.Completed[any](nil, ErrNilTask)
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return async.Completed[any](nil, ErrLimiterClosed)
	}

	start := l.advanceLocked()
	l.stats.TotalRequests++

	if l.count < l.cfg.MaxRequests {
		l.count++
		l.stats.Executed++
		l.mu.Unlock()
		start()

		v, err := task(ctx)
		return async.Completed(v, err)
	}

	l.stats.RateLimited++

	if len(l.queue) >= l.cfg.MaxQueueSize {
		l.stats.Rejected++
		size := len(l.queue)
		l.mu.Unlock()
		start()

		l.log.WarnContext(ctx, "call rejected, queue is full", logger.QueueSize(size))
		return async.Completed[any](nil, ErrQueueFull)
	}

	p := async.NewPromise[any]()
	l.queue = append(l.queue, &queuedTask{
		ctx:        ctx,
		enqueuedAt: l.now(),
		task:       task,
		promise:    p,
	})
	size := len(l.queue)
	l.mu.Unlock()
	start()

	l.log.DebugContext(ctx, "call queued", logger.QueueSize(size))
	return p.Future()
}

// Bypass runs task immediately without consulting or changing the quota
// or the queue.
func (l *Limiter) Bypass(ctx context.Context, task Task) (any, error) {
	if task == nil {
		return nil, ErrNilTask
	}

	l.mu.Lock()
	start := l.advanceLocked()
	l.mu.Unlock()
	start()

	return task(ctx)
}

// State returns a snapshot of the current window and queue.
func (l *Limiter) State() State {
	l.mu.Lock()
	start := l.advanceLocked()
	now := l.now()
	s := State{
		RequestCount:   l.count,
		MaxRequests:    l.cfg.MaxRequests,
		Window:         l.cfg.Window,
		TimeUntilReset: max(0, l.windowStart.Add(l.cfg.Window).Sub(now)),
		QueueSize:      len(l.queue),
	}
	l.mu.Unlock()

	start()
	return s
}

// Stats returns the cumulative counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	start := l.advanceLocked()
	s := l.stats
	l.mu.Unlock()

	start()
	return s
}

// ClearQueue rejects every queued task with ErrQueueCleared and returns how
// many were discarded. The window count is left untouched.
func (l *Limiter) ClearQueue() int {
	l.mu.Lock()
	start := l.advanceLocked()
	pending := l.takeQueueLocked()
	l.stats.Rejected += int64(len(pending))
	l.mu.Unlock()
	start()

	rejectAll(pending, ErrQueueCleared)
	if len(pending) > 0 {
		l.log.Info("queue cleared", logger.QueueSize(len(pending)))
	}
	return len(pending)
}

// Reset rejects every queued task with ErrLimiterReset and zeroes the
// window count and stats, starting a fresh window.
func (l *Limiter) Reset() {
	l.mu.Lock()
	pending := l.takeQueueLocked()
	l.count = 0
	l.windowStart = l.now()
	l.stats = Stats{}
	l.mu.Unlock()

	rejectAll(pending, ErrLimiterReset)
	l.log.Info("limiter reset", logger.QueueSize(len(pending)))
}

// Run returns a function suitable for errgroup that checks for window
// rollover every drain interval until ctx is done, then closes the limiter.
func (l *Limiter) Run(ctx context.Context) func() error {
	return func() error {
		ticker := time.NewTicker(l.drainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return l.Close()
			case <-ticker.C:
				l.mu.Lock()
				start := l.advanceLocked()
				l.mu.Unlock()
				start()
			}
		}
	}
}

// Close rejects queued tasks with ErrLimiterClosed, waits for drained
// tasks that are already running, and makes further Execute calls fail.
func (l *Limiter) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	pending := l.takeQueueLocked()
	l.stats.Rejected += int64(len(pending))
	last := l.lastBatch
	l.mu.Unlock()

	rejectAll(pending, ErrLimiterClosed)
	if last != nil {
		<-last
	}
	return nil
}

// advanceLocked rolls the window over when it has elapsed and moves as many
// queued tasks as the window allows into a batch. The returned function
// starts that batch and must be called after the lock is released. Batches
// settle behind the previous batch.
func (l *Limiter) advanceLocked() func() {
	now := l.now()
	if now.Sub(l.windowStart) >= l.cfg.Window {
		l.count = 0
		l.windowStart = now
	}

	n := min(len(l.queue), l.cfg.MaxRequests-l.count)
	if n <= 0 || l.closed {
		return func() {}
	}

	batch := make([]*queuedTask, n)
	copy(batch, l.queue[:n])
	clear(l.queue[:n])
	l.queue = l.queue[n:]
	l.count += n
	l.stats.Executed += int64(n)

	prev := l.lastBatch
	done := make(chan struct{})
	l.lastBatch = done
	remaining := len(l.queue)

	return func() {
		l.log.Debug("draining queued calls",
			slog.Int("batch", n),
			logger.QueueSize(remaining))

		outcomes := make([]chan outcome, n)
		for i, qt := range batch {
			ch := make(chan outcome, 1)
			outcomes[i] = ch
			go func() { ch <- l.run(qt) }()
		}

		go func() {
			defer close(done)
			if prev != nil {
				<-prev
			}
			for i, qt := range batch {
				o := <-outcomes[i]
				qt.promise.Settle(o.value, o.err)
			}
		}()
	}
}

func (l *Limiter) takeQueueLocked() []*queuedTask {
	pending := l.queue
	l.queue = nil
	return pending
}

type outcome struct {
	value any
	err   error
}

func (l *Limiter) run(qt *queuedTask) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("queued task panicked", slog.Any("panic", r))
			o = outcome{err: fmt.Errorf("%w: %v", ErrTaskPanicked, r)}
		}
	}()

	l.log.Debug("running queued call", logger.Duration(l.now().Sub(qt.enqueuedAt)))
	v, err := qt.task(qt.ctx)
	return outcome{value: v, err: err}
}

func rejectAll(pending []*queuedTask, err error) {
	for _, qt := range pending {
		qt.promise.Reject(err)
	}
}
