package ratelimit

import "errors"

var (
	// Common rate limiting errors.
	ErrInvalidLimit     = errors.New("invalid limit")
	ErrInvalidWindow    = errors.New("invalid window")
	ErrTierNameRequired = errors.New("tier name is required")
	ErrUnknownTier      = errors.New("unknown tier")
	ErrNoTiers          = errors.New("no tiers configured")
	ErrKeyRequired      = errors.New("key is required")
	ErrStoreRequired    = errors.New("store is required")
	ErrInvalidTierFile  = errors.New("invalid tier file")
)
