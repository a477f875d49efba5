// Package throttle guards a single quota-constrained resource, typically a
// third-party API, with a fixed window limiter and a bounded FIFO queue.
//
// A Limiter is constructed explicitly and shared by the call sites that talk
// to the resource:
//
//	l, err := throttle.New(throttle.DefaultConfig(), throttle.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer l.Close()
//
//	user, err := throttle.Do(ctx, l, func(ctx context.Context) (*User, error) {
//		return client.GetUser(ctx, id)
//	})
//
// Execute is the lower level entry point. It returns an async.Future that is
// already settled when the call ran immediately or was rejected, and pending
// while the call waits for a later window. The calls drained by one window
// start together in enqueue order, so N queued upstream calls cost about one
// upstream latency rather than N. Their futures settle in enqueue order and
// each caller receives the outcome of its own task.
//
// The limiter has three states. While the window count is below MaxRequests
// calls run immediately. Once the quota is spent calls are queued. Once the
// queue holds MaxQueueSize calls, Execute fails with ErrQueueFull. Window
// rollover is detected lazily on every method call; Run adds a periodic
// check so queued calls drain even without new traffic.
//
// Bypass runs a task immediately and never touches the count or queue.
// Transport applies the limiter to an http.Client; requests whose context
// carries WithBypass go through Bypass.
//
// ClearQueue and Reset are the only ways to cancel queued calls; their
// futures fail with ErrQueueCleared and ErrLimiterReset respectively.
package throttle
