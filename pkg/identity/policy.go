package identity

import (
	"fmt"
	"strings"
)

// Policy decides what happens to requests whose identity cannot be resolved.
// There is deliberately no "allow" policy.
type Policy uint8

const (
	// PolicyDeny rejects unidentifiable requests outright.
	PolicyDeny Policy = iota
	// PolicyStrictest accounts unidentifiable requests against a shared
	// bucket using the strictest configured tier.
	PolicyStrictest
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == PolicyStrictest {
		return "strictest"
	}
	return "deny"
}

// ParsePolicy parses "deny" or "strictest".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deny":
		return PolicyDeny, nil
	case "strictest", "strict":
		return PolicyStrictest, nil
	default:
		return PolicyDeny, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// UnmarshalText lets Policy be used directly in env-tagged config structs.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
