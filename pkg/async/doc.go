// Package async provides small generic primitives for values that become
// available later.
//
// A Future is the reading side: callers block on Await, AwaitContext or
// AwaitWithTimeout, poll with IsComplete, or select on Done. A Promise is the
// writing side: the code that owns the work settles it exactly once with
// Resolve, Reject or Settle. Futures that are ready immediately are built
// with Completed.
//
//	p := async.NewPromise[string]()
//	go func() {
//		p.Resolve("done")
//	}()
//	v, err := p.Future().Await()
//
// # Error Handling
//
// Futures carry whatever error the work produced. AwaitWithTimeout returns
// ErrTimeout and AwaitContext returns the context error when the caller
// stops waiting; neither cancels the underlying work.
package async
