package abuse

import (
	"fmt"
	"time"
)

// Config controls escalation from repeated rate limit violations to a block.
type Config struct {
	// Threshold is the number of violations within Window that triggers a block.
	Threshold int `env:"ABUSE_THRESHOLD" envDefault:"10"`
	// Window is the abuse detection window. Violations older than the
	// window are forgotten if no block was created.
	Window time.Duration `env:"ABUSE_WINDOW" envDefault:"1h"`
	// BlockDuration is how long an escalated identity stays blocked.
	BlockDuration time.Duration `env:"ABUSE_BLOCK_DURATION" envDefault:"1h"`
}

// DefaultConfig returns 10 violations per hour escalating to a one hour block.
func DefaultConfig() Config {
	return Config{
		Threshold:     10,
		Window:        time.Hour,
		BlockDuration: time.Hour,
	}
}

func (c Config) validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be positive, got %d", ErrInvalidConfig, c.Threshold)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	if c.BlockDuration <= 0 {
		return fmt.Errorf("%w: block duration must be positive, got %v", ErrInvalidConfig, c.BlockDuration)
	}
	return nil
}
