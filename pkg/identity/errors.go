package identity

import "errors"

// ErrInvalidPolicy is returned when parsing an unknown unresolved-identity policy.
var ErrInvalidPolicy = errors.New("identity: invalid unresolved policy")
