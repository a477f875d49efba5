package identity

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/gatekeeper/pkg/clientip"
)

// StringFunc extracts a string value from a request.
type StringFunc func(r *http.Request) string

// Resolver derives an Identity from HTTP requests.
type Resolver struct {
	userID  StringFunc
	address StringFunc
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithUserIDFunc sets how the authenticated user id is read from a request.
// Authentication itself happens elsewhere; this only reads its result.
func WithUserIDFunc(fn StringFunc) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.userID = fn
		}
	}
}

// WithUserIDFromContext reads the user id stored in the request context under key.
func WithUserIDFromContext(key any) ResolverOption {
	return WithUserIDFunc(func(r *http.Request) string {
		return stringFromContext(r.Context(), key)
	})
}

// WithAddressFunc overrides how the network address is read from a request.
func WithAddressFunc(fn StringFunc) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.address = fn
		}
	}
}

// NewResolver creates a Resolver. By default no user id is read and the
// address comes from the clientip context value, falling back to clientip.GetIP.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		userID:  func(*http.Request) string { return "" },
		address: requestAddress,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromRequest resolves the identity of r.
func (res *Resolver) FromRequest(r *http.Request) Identity {
	return Resolve(res.userID(r), res.address(r))
}

// Address returns the network address the resolver sees for r.
func (res *Resolver) Address(r *http.Request) string {
	return res.address(r)
}

func requestAddress(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.GetIP(r)
}

func stringFromContext(ctx context.Context, key any) string {
	switch v := ctx.Value(key).(type) {
	case string:
		return v
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}
