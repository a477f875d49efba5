package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekeeper/pkg/clientip"
	"github.com/dmitrymomot/gatekeeper/pkg/identity"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userID   string
		addr     string
		wantKind identity.Kind
		wantKey  string
	}{
		{name: "user id wins", userID: "42", addr: "203.0.113.7", wantKind: identity.KindUser, wantKey: "user:42"},
		{name: "address fallback", userID: "", addr: "203.0.113.7", wantKind: identity.KindNetwork, wantKey: "ip:203.0.113.7"},
		{name: "blank user id ignored", userID: "   ", addr: "203.0.113.7", wantKind: identity.KindNetwork, wantKey: "ip:203.0.113.7"},
		{name: "user id trimmed", userID: " 42 ", wantKind: identity.KindUser, wantKey: "user:42"},
		{name: "nothing available", wantKind: identity.KindUnresolved, wantKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id := identity.Resolve(tt.userID, tt.addr)
			assert.Equal(t, tt.wantKind, id.Kind)
			assert.Equal(t, tt.wantKey, id.Key())
			assert.Equal(t, tt.wantKind != identity.KindUnresolved, id.Resolved())
		})
	}
}

func TestIdentity_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user:7", identity.User("7").String())
	assert.Equal(t, "ip:::1", identity.Network("::1").String())
	assert.Equal(t, "unresolved", identity.Identity{}.String())
	assert.Equal(t, "unresolved", identity.User("").String())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := identity.ParsePolicy("deny")
	require.NoError(t, err)
	assert.Equal(t, identity.PolicyDeny, p)

	p, err = identity.ParsePolicy(" Strictest ")
	require.NoError(t, err)
	assert.Equal(t, identity.PolicyStrictest, p)

	p, err = identity.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, identity.PolicyDeny, p)

	_, err = identity.ParsePolicy("allow")
	assert.ErrorIs(t, err, identity.ErrInvalidPolicy)

	var fromText identity.Policy
	require.NoError(t, fromText.UnmarshalText([]byte("strictest")))
	assert.Equal(t, identity.PolicyStrictest, fromText)
	assert.Error(t, fromText.UnmarshalText([]byte("open")))
}

type userKey struct{}

func TestResolver(t *testing.T) {
	t.Parallel()

	t.Run("user from context", func(t *testing.T) {
		t.Parallel()
		res := identity.NewResolver(identity.WithUserIDFromContext(userKey{}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), userKey{}, "alice"))

		id := res.FromRequest(req)
		assert.Equal(t, identity.User("alice"), id)
	})

	t.Run("stringer user id", func(t *testing.T) {
		t.Parallel()
		res := identity.NewResolver(identity.WithUserIDFromContext(userKey{}))
		uid := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), userKey{}, uid))

		assert.Equal(t, identity.User(uid.String()), res.FromRequest(req))
	})

	t.Run("address from clientip context", func(t *testing.T) {
		t.Parallel()
		res := identity.NewResolver()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(clientip.WithContext(req.Context(), "198.51.100.9"))

		assert.Equal(t, identity.Network("198.51.100.9"), res.FromRequest(req))
	})

	t.Run("address from headers", func(t *testing.T) {
		t.Parallel()
		res := identity.NewResolver()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

		assert.Equal(t, identity.Network("203.0.113.5"), res.FromRequest(req))
		assert.Equal(t, "203.0.113.5", res.Address(req))
	})

	t.Run("unresolved", func(t *testing.T) {
		t.Parallel()
		res := identity.NewResolver(identity.WithAddressFunc(func(*http.Request) string { return "" }))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		id := res.FromRequest(req)
		assert.False(t, id.Resolved())
		assert.Empty(t, id.Key())
	})
}
