// Package httpserver runs an http.Handler with context-driven graceful
// shutdown and provides liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	g.Go(func() error { return srv.Run(ctx, router) })
//
// Run listens on the configured address and returns once ctx is done and
// in-flight requests have finished, or the shutdown timeout elapsed.
// Signal handling is left to the caller, typically via signal.NotifyContext.
//
// LivenessHandler always reports "ALIVE". ReadinessHandler runs named checks
// such as redis.Healthcheck and reports "READY" or 503 "NOT_READY".
package httpserver
