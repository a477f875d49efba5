package throttle

import "context"

// Do runs fn through l.Execute and waits for its outcome or for ctx to be
// done. Giving up on a queued call does not remove it from the queue.
func Do[T any](ctx context.Context, l *Limiter, fn func(context.Context) (T, error)) (T, error) {
	f := l.Execute(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})

	v, err := f.AwaitContext(ctx)
	res, _ := v.(T)
	return res, err
}

// BypassDo runs fn through l.Bypass.
func BypassDo[T any](ctx context.Context, l *Limiter, fn func(context.Context) (T, error)) (T, error) {
	v, err := l.Bypass(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})

	res, _ := v.(T)
	return res, err
}
