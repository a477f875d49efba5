// Package config loads typed application configuration from environment
// variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// dotenv files are loaded first (never overriding variables that are already
// set), then the environment is parsed into a struct using its field tags.
//
//	type Config struct {
//		Addr       string        `env:"HTTP_ADDR" envDefault:":8080"`
//		TiersFile  string        `env:"TIERS_FILE"`
//		Window     time.Duration `env:"THROTTLE_WINDOW" envDefault:"60s"`
//	}
//
//	cfg, err := config.Load[Config]()
//
// Structs implementing Validator are validated after parsing; failures wrap
// ErrInvalidConfig. Tests can pass WithEnvironment to parse a fixed map
// instead of the process environment.
//
// # Errors
//
//   - ErrParsingConfig: a variable is missing or malformed.
//   - ErrInvalidConfig: the parsed struct rejected itself.
//   - ErrLoadingEnvFile: an existing dotenv file could not be read.
package config
