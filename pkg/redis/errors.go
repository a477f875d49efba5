package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned by Connect when REDIS_URL is unset.
	ErrEmptyConnectionURL = errors.New("redis: connection url is empty")
	// ErrFailedToParseRedisConnString wraps url parsing errors.
	ErrFailedToParseRedisConnString = errors.New("redis: invalid connection url")
	// ErrRedisNotReady is returned when no connection attempt succeeded.
	ErrRedisNotReady = errors.New("redis: server not ready")
	// ErrHealthcheckFailed wraps ping errors from Healthcheck.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
