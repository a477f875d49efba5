package throttle

import (
	"fmt"
	"time"
)

// Config bounds calls to a single quota-constrained resource.
type Config struct {
	// MaxRequests is the number of calls allowed per window.
	MaxRequests int `env:"THROTTLE_MAX_REQUESTS" envDefault:"100"`
	// Window is the fixed window length.
	Window time.Duration `env:"THROTTLE_WINDOW" envDefault:"60s"`
	// MaxQueueSize is the number of calls that may wait for the next window.
	// Zero disables queueing: saturated calls fail with ErrQueueFull.
	MaxQueueSize int `env:"THROTTLE_MAX_QUEUE_SIZE" envDefault:"50"`
}

// DefaultConfig returns 100 calls per minute with 50 queue slots.
func DefaultConfig() Config {
	return Config{
		MaxRequests:  100,
		Window:       time.Minute,
		MaxQueueSize: 50,
	}
}

func (c Config) validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("%w: max requests must be positive, got %d", ErrInvalidConfig, c.MaxRequests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	if c.MaxQueueSize < 0 {
		return fmt.Errorf("%w: max queue size must not be negative, got %d", ErrInvalidConfig, c.MaxQueueSize)
	}
	return nil
}
