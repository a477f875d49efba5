package identity

import "strings"

// Kind tells how an Identity was derived.
type Kind uint8

const (
	// KindUnresolved means neither a user id nor a network address was available.
	KindUnresolved Kind = iota
	// KindUser identifies an authenticated user.
	KindUser
	// KindNetwork identifies a caller by network address.
	KindNetwork
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindNetwork:
		return "ip"
	default:
		return "unresolved"
	}
}

// Identity is the key under which quota and block state are tracked.
// The zero value is an unresolved identity.
type Identity struct {
	Kind  Kind
	Value string
}

// User returns a user identity.
func User(id string) Identity {
	return Identity{Kind: KindUser, Value: id}
}

// Network returns a network address identity.
func Network(addr string) Identity {
	return Identity{Kind: KindNetwork, Value: addr}
}

// Resolve derives an identity from an optional user id and an optional
// network address. A non-empty user id always wins.
func Resolve(userID, addr string) Identity {
	if userID = strings.TrimSpace(userID); userID != "" {
		return User(userID)
	}
	if addr = strings.TrimSpace(addr); addr != "" {
		return Network(addr)
	}
	return Identity{}
}

// Resolved reports whether the identity can be used as a rate limit key.
func (i Identity) Resolved() bool {
	return i.Kind != KindUnresolved && i.Value != ""
}

// Key returns the storage key, prefixed by kind so that a user id can never
// collide with an address. Unresolved identities return an empty string.
func (i Identity) Key() string {
	if !i.Resolved() {
		return ""
	}
	return i.Kind.String() + ":" + i.Value
}

// String implements fmt.Stringer.
func (i Identity) String() string {
	if !i.Resolved() {
		return KindUnresolved.String()
	}
	return i.Key()
}
