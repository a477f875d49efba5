package admission

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/gatekeeper/pkg/logger"
	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
)

type errorResponse struct {
	Error ErrorPayload `json:"error"`
}

// Middleware guards handlers with the named tier.
// It panics if the tier is not registered, so misconfiguration fails at startup.
func (l *Limiter) Middleware(tierName string) func(http.Handler) http.Handler {
	tier := l.tiers.MustGet(tierName)
	return func(next http.Handler) http.Handler {
		return l.Wrap(tier, next)
	}
}

// Wrap guards next with tier. Quota headers are attached to every response;
// denied requests are answered with an ErrorPayload and never reach next.
func (l *Limiter) Wrap(tier ratelimit.Tier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := l.resolver.FromRequest(r)
		res := l.CheckRateLimit(r.Context(), id.Key(), tier, l.resolver.Address(r))

		now := l.now()
		res.WriteHeaders(w, now)
		if res.Success {
			next.ServeHTTP(w, r)
			return
		}

		l.Deny(w, r, res)
	})
}

// Deny writes the denial response for res.
func (l *Limiter) Deny(w http.ResponseWriter, r *http.Request, res Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(l.StatusFor(res))
	if err := json.NewEncoder(w).Encode(errorResponse{Error: res.Payload(l.now())}); err != nil {
		l.log.ErrorContext(r.Context(), "failed to write denial response", logger.Error(err))
	}
}

// StatusFor returns the HTTP status for a decision.
func (l *Limiter) StatusFor(res Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Blocked:
		return l.blockedStatus
	case res.Unresolved:
		return l.unresolvedStatus
	default:
		return l.quotaStatus
	}
}
