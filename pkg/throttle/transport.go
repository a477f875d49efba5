package throttle

import (
	"context"
	"net/http"
)

type bypassKey struct{}

// WithBypass marks ctx so that requests made with it skip the limiter.
// Use it for privileged internal calls that must never wait.
func WithBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

// IsBypassed reports whether ctx was marked with WithBypass.
func IsBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}

// Transport is an http.RoundTripper that sends requests through a Limiter.
//
// Requests beyond the window quota wait in the limiter queue; requests
// beyond the queue capacity fail with ErrQueueFull before anything is sent.
type Transport struct {
	limiter *Limiter
	base    http.RoundTripper
}

// NewTransport wraps base with l. A nil base means http.DefaultTransport.
func NewTransport(l *Limiter, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{limiter: l, base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	send := func(context.Context) (*http.Response, error) {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	if IsBypassed(ctx) {
		return BypassDo(ctx, t.limiter, send)
	}
	return Do(ctx, t.limiter, send)
}
