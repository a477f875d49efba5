package environment

import "strings"

// Environment is the deployment environment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse normalizes s, accepting the short aliases dev, stage and prod.
// Unknown values are kept lowercased; an empty value means Development.
func Parse(s string) Environment {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "dev", string(Development):
		return Development
	case "stage", string(Staging):
		return Staging
	case "prod", string(Production):
		return Production
	default:
		return Environment(v)
	}
}

// String implements fmt.Stringer.
func (e Environment) String() string { return string(e) }

// IsProduction reports whether e is production.
func (e Environment) IsProduction() bool { return Parse(string(e)) == Production }

// IsStaging reports whether e is staging.
func (e Environment) IsStaging() bool { return Parse(string(e)) == Staging }

// IsDevelopment reports whether e is development.
func (e Environment) IsDevelopment() bool { return Parse(string(e)) == Development }

// UnmarshalText lets Environment be used directly in env-tagged config structs.
func (e *Environment) UnmarshalText(text []byte) error {
	*e = Parse(string(text))
	return nil
}
