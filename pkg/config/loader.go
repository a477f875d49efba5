package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by config structs that check themselves after
// parsing.
type Validator interface {
	Validate() error
}

type options struct {
	prefix   string
	envFiles []string
	environ  map[string]string
}

// Option configures Load.
type Option func(*options)

// WithPrefix only reads variables starting with prefix; tags omit it.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnvFiles sets the dotenv files loaded before parsing. Missing files
// are skipped and already set variables are never overridden.
// Default is ".env".
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.envFiles = files
	}
}

// WithEnvironment parses vars instead of the process environment and
// disables dotenv loading. Intended for tests.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) {
		o.environ = vars
	}
}

// Load parses environment variables into a new T based on its env tags.
// If T implements Validator, the parsed value is validated.
//
// Example:
//
//	type ServerConfig struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"5s"`
//	}
//
//	cfg, err := config.Load[ServerConfig]()
func Load[T any](opts ...Option) (T, error) {
	o := options{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	if o.environ == nil {
		if err := loadEnvFiles(o.envFiles); err != nil {
			return zero, err
		}
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Prefix:      o.prefix,
		Environment: o.environ,
	})
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}

	if v, ok := any(&cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, errors.Join(ErrInvalidConfig, err)
		}
	}

	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Useful for configuration the application cannot start without.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}
