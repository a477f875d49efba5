package abuse

import "errors"

var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("abuse: invalid configuration")

	// ErrKeyRequired indicates an empty identity key.
	ErrKeyRequired = errors.New("abuse: key is required")
)
