package httpserver

import "errors"

var (
	// ErrStart wraps listen and serve failures returned by Run.
	ErrStart = errors.New("http server failed")
	// ErrAlreadyRunning is joined with ErrStart when Run is called twice.
	ErrAlreadyRunning = errors.New("http server already running")
	// ErrShutdown wraps errors from a graceful shutdown that did not finish.
	ErrShutdown = errors.New("http server shutdown failed")
)
