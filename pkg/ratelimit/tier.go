package ratelimit

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in tier names.
const (
	TierAuth   = "auth"
	TierAPI    = "api"
	TierPublic = "public"
)

// Tier is a named rate limit policy.
type Tier struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Validate checks that the tier can be enforced.
func (t Tier) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTierNameRequired
	}
	if t.Limit <= 0 {
		return fmt.Errorf("%w: tier %q limit must be positive, got %d", ErrInvalidLimit, t.Name, t.Limit)
	}
	if t.Window <= 0 {
		return fmt.Errorf("%w: tier %q window must be positive, got %v", ErrInvalidWindow, t.Name, t.Window)
	}
	return nil
}

// rate returns admitted requests per second, used to order tiers by strictness.
func (t Tier) rate() float64 {
	return float64(t.Limit) / t.Window.Seconds()
}

// Tiers is an immutable set of tiers keyed by name.
type Tiers struct {
	byName map[string]Tier
}

// NewTiers validates and indexes the given tiers. Later duplicates override earlier ones.
func NewTiers(tiers ...Tier) (*Tiers, error) {
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}

	byName := make(map[string]Tier, len(tiers))
	for _, t := range tiers {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		byName[t.Name] = t
	}
	return &Tiers{byName: byName}, nil
}

// DefaultTiers returns the built-in tiers: auth 5/15m, api 100/1m, public 300/1m.
func DefaultTiers() *Tiers {
	tiers, _ := NewTiers(
		Tier{Name: TierAuth, Limit: 5, Window: 15 * time.Minute},
		Tier{Name: TierAPI, Limit: 100, Window: time.Minute},
		Tier{Name: TierPublic, Limit: 300, Window: time.Minute},
	)
	return tiers
}

// Get returns the tier with the given name.
func (ts *Tiers) Get(name string) (Tier, bool) {
	t, ok := ts.byName[name]
	return t, ok
}

// MustGet returns the named tier or panics. Meant for wiring at startup.
func (ts *Tiers) MustGet(name string) Tier {
	t, ok := ts.Get(name)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownTier, name))
	}
	return t
}

// Names returns the tier names in sorted order.
func (ts *Tiers) Names() []string {
	names := make([]string, 0, len(ts.byName))
	for name := range ts.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Strictest returns the tier admitting the fewest requests per second,
// breaking ties by the lower limit and then by name.
func (ts *Tiers) Strictest() Tier {
	var strictest Tier
	for _, name := range ts.Names() {
		t := ts.byName[name]
		if strictest.Name == "" ||
			t.rate() < strictest.rate() ||
			(t.rate() == strictest.rate() && t.Limit < strictest.Limit) {
			strictest = t
		}
	}
	return strictest
}

// Merge returns a new set containing ts overridden by other.
func (ts *Tiers) Merge(other *Tiers) *Tiers {
	byName := make(map[string]Tier, len(ts.byName))
	for k, v := range ts.byName {
		byName[k] = v
	}
	if other != nil {
		for k, v := range other.byName {
			byName[k] = v
		}
	}
	return &Tiers{byName: byName}
}

type tierFile struct {
	Tiers []struct {
		Name   string `yaml:"name"`
		Limit  int    `yaml:"limit"`
		Window string `yaml:"window"`
	} `yaml:"tiers"`
}

// ParseTiers decodes a YAML tier document:
//
//	tiers:
//	  - name: auth
//	    limit: 5
//	    window: 15m
func ParseTiers(data []byte) (*Tiers, error) {
	var doc tierFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidTierFile, err)
	}

	tiers := make([]Tier, 0, len(doc.Tiers))
	for _, raw := range doc.Tiers {
		window, err := time.ParseDuration(raw.Window)
		if err != nil {
			return nil, errors.Join(ErrInvalidTierFile, fmt.Errorf("tier %q: %w", raw.Name, err))
		}
		tiers = append(tiers, Tier{Name: strings.TrimSpace(raw.Name), Limit: raw.Limit, Window: window})
	}

	return NewTiers(tiers...)
}

// LoadTiers reads a YAML tier file and merges it over DefaultTiers.
// An empty path returns the defaults.
func LoadTiers(path string) (*Tiers, error) {
	if path == "" {
		return DefaultTiers(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidTierFile, err)
	}

	tiers, err := ParseTiers(data)
	if err != nil {
		return nil, err
	}
	return DefaultTiers().Merge(tiers), nil
}
