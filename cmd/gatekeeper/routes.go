package main

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/gatekeeper/pkg/clientip"
	"github.com/dmitrymomot/gatekeeper/pkg/environment"
	"github.com/dmitrymomot/gatekeeper/pkg/httpserver"
	"github.com/dmitrymomot/gatekeeper/pkg/logger"
	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
	"github.com/dmitrymomot/gatekeeper/pkg/redis"
	"github.com/dmitrymomot/gatekeeper/pkg/requestid"
)

const (
	codeUnauthorized    = "UNAUTHORIZED"
	codeTooManyAttempts = "TOO_MANY_ATTEMPTS"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.Recoverer,
		requestid.Middleware,
		environment.Middleware(a.cfg.Env),
		clientip.NewExtractor(a.cfg.IPHeaders...).Middleware,
		a.accessLog,
	)

	var checks []httpserver.Check
	if a.rdb != nil {
		checks = append(checks, httpserver.Check{Name: "redis", Check: redis.Healthcheck(a.rdb)})
	}
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(a.log, checks...))

	if a.cfg.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(a.requireAdmin)
			a.adminRoutes(r)
		})
	}

	r.With(a.gate.Middleware(ratelimit.TierAuth)).Handle("/auth/*", a.backend)
	r.With(a.gate.Middleware(ratelimit.TierAPI)).Handle("/api/*", a.backend)
	if a.upstream != nil {
		r.With(a.gate.Middleware(ratelimit.TierAPI)).Handle("/upstream/*", a.upstream)
	}
	r.With(a.gate.Middleware(ratelimit.TierPublic)).Handle("/*", a.backend)

	return r
}

// requireAdmin checks the bearer token. Failed attempts drain a token
// bucket; once it is empty every admin request is refused until it refills.
func (a *app) requireAdmin(next http.Handler) http.Handler {
	want := []byte(a.cfg.AdminToken)
	failures := a.adminFailures

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failures.Tokens() < 1 {
			writeError(w, http.StatusTooManyRequests, codeTooManyAttempts, "too many failed admin attempts")
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), want) != 1 {
			failures.Allow()
			a.log.WarnContext(r.Context(), "admin authentication failed", slog.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "admin token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *app) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		a.log.Log(r.Context(), level, "request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			logger.Duration(time.Since(start)))
	})
}
