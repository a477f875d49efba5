package async

import "errors"

// ErrTimeout is returned by AwaitWithTimeout when the future is still pending.
var ErrTimeout = errors.New("async: future not settled before timeout")
