package throttle

import "errors"

var (
	// ErrQueueFull is returned when the window quota is spent and the wait
	// queue has no free slot.
	ErrQueueFull = errors.New("rate limit exceeded - queue is full")

	// ErrQueueCleared is delivered to queued tasks discarded by ClearQueue.
	ErrQueueCleared = errors.New("throttle: queued task cleared")

	// ErrLimiterReset is delivered to queued tasks discarded by Reset.
	ErrLimiterReset = errors.New("throttle: limiter reset")

	// ErrLimiterClosed is returned once the limiter has been closed.
	ErrLimiterClosed = errors.New("throttle: limiter closed")

	// ErrNilTask is returned when Execute or Bypass receive a nil task.
	ErrNilTask = errors.New("throttle: task is nil")

	// ErrTaskPanicked wraps a panic recovered from a queued task.
	ErrTaskPanicked = errors.New("throttle: task panicked")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("throttle: invalid configuration")
)
