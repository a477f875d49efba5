package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the eventual result of an asynchronous computation.
// A Future is settled exactly once; later settle attempts are ignored.
type Future[U any] struct {
	result U
	err    error
	once   sync.Once
	done   chan struct{}
}

func newFuture[U any]() *Future[U] {
	return &Future[U]{done: make(chan struct{})}
}

// settle stores the outcome and releases waiters. It reports whether this
// call settled the future.
func (f *Future[U]) settle(result U, err error) bool {
	settled := false
	f.once.Do(func() {
		f.result = result
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Await waits for the future to settle and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext waits for the future to settle or for ctx to be done.
// Giving up on a future does not cancel the work behind it.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits for the future with a timeout.
// If the timeout occurs before completion, returns ErrTimeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// Done returns a channel that is closed once the future settles.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete checks if the future has settled without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Promise is the writing side of a Future: whoever holds it decides the outcome.
type Promise[U any] struct {
	future *Future[U]
}

// NewPromise creates an unsettled promise.
func NewPromise[U any]() *Promise[U] {
	return &Promise[U]{future: newFuture[U]()}
}

// Future returns the reading side of the promise.
func (p *Promise[U]) Future() *Future[U] {
	return p.future
}

// Settle completes the promise with result and err. Only the first call has
// an effect; it reports whether this call settled the promise.
func (p *Promise[U]) Settle(result U, err error) bool {
	return p.future.settle(result, err)
}

// Resolve completes the promise successfully.
func (p *Promise[U]) Resolve(result U) bool {
	return p.future.settle(result, nil)
}

// Reject completes the promise with err.
func (p *Promise[U]) Reject(err error) bool {
	var zero U
	return p.future.settle(zero, err)
}

// Completed returns an already settled future.
func Completed[U any](result U, err error) *Future[U] {
	f := newFuture[U]()
	f.settle(result, err)
	return f
}
