package admission

import "errors"

var (
	// ErrCounterRequired is returned by New without a window counter.
	ErrCounterRequired = errors.New("admission: counter is required")

	// ErrDetectorRequired is returned by New without an abuse detector.
	ErrDetectorRequired = errors.New("admission: detector is required")
)
