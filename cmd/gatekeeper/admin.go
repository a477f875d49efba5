package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gatekeeper/pkg/abuse"
	"github.com/dmitrymomot/gatekeeper/pkg/logger"
	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
)

const (
	codeBadRequest  = "BAD_REQUEST"
	codeNotFound    = "NOT_FOUND"
	codeUnavailable = "STORE_UNAVAILABLE"
)

func (a *app) adminRoutes(r chi.Router) {
	r.Get("/tiers", a.listTiers)
	r.Get("/stats", a.admissionStats)

	r.Get("/throttle", a.throttleState)
	r.Post("/throttle/clear", a.clearThrottleQueue)
	r.Post("/throttle/reset", a.resetThrottle)

	r.Get("/blocks", a.listBlocks)
	r.Post("/blocks", a.createBlock)
	r.Delete("/blocks/{identity}", a.deleteBlock)

	r.Get("/quota/{tier}/{identity}", a.quotaStatus)
	r.Delete("/quota/{tier}/{identity}", a.resetQuota)
}

type tierView struct {
	Name          string  `json:"name"`
	Limit         int     `json:"limit"`
	WindowSeconds float64 `json:"window_seconds"`
}

func (a *app) listTiers(w http.ResponseWriter, r *http.Request) {
	tiers := a.gate.Tiers()
	out := make([]tierView, 0, len(tiers.Names()))
	for _, name := range tiers.Names() {
		t := tiers.MustGet(name)
		out = append(out, tierView{Name: t.Name, Limit: t.Limit, WindowSeconds: t.Window.Seconds()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *app) admissionStats(w http.ResponseWriter, r *http.Request) {
	var dropped int64
	if a.events != nil {
		dropped = a.events.Dropped()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":          a.stats.Total(),
		"by_tier":        a.stats.ByTier(),
		"events_dropped": dropped,
	})
}

type throttleView struct {
	RequestCount      int     `json:"request_count"`
	MaxRequests       int     `json:"max_requests"`
	WindowSeconds     float64 `json:"window_seconds"`
	SecondsUntilReset float64 `json:"seconds_until_reset"`
	QueueSize         int     `json:"queue_size"`
	MaxQueueSize      int     `json:"max_queue_size"`
	TotalRequests     int64   `json:"total_requests"`
	RateLimited       int64   `json:"rate_limited"`
	Executed          int64   `json:"executed"`
	Rejected          int64   `json:"rejected"`
}

func (a *app) throttleState(w http.ResponseWriter, r *http.Request) {
	state, stats := a.throttle.State(), a.throttle.Stats()
	writeJSON(w, http.StatusOK, throttleView{
		RequestCount:      state.RequestCount,
		MaxRequests:       state.MaxRequests,
		WindowSeconds:     state.Window.Seconds(),
		SecondsUntilReset: state.TimeUntilReset.Seconds(),
		QueueSize:         state.QueueSize,
		MaxQueueSize:      a.throttle.Config().MaxQueueSize,
		TotalRequests:     stats.TotalRequests,
		RateLimited:       stats.RateLimited,
		Executed:          stats.Executed,
		Rejected:          stats.Rejected,
	})
}

func (a *app) clearThrottleQueue(w http.ResponseWriter, r *http.Request) {
	n := a.throttle.ClearQueue()
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (a *app) resetThrottle(w http.ResponseWriter, r *http.Request) {
	a.throttle.Reset()
	w.WriteHeader(http.StatusNoContent)
}

type blockView struct {
	Identity     string    `json:"identity"`
	Reason       string    `json:"reason"`
	Violations   int       `json:"violations"`
	BlockedAt    time.Time `json:"blocked_at"`
	BlockedUntil time.Time `json:"blocked_until"`
}

func newBlockView(b abuse.Block) blockView {
	return blockView{
		Identity:     b.Key,
		Reason:       b.Reason,
		Violations:   b.Violations,
		BlockedAt:    b.BlockedAt,
		BlockedUntil: b.BlockedUntil,
	}
}

func (a *app) listBlocks(w http.ResponseWriter, r *http.Request) {
	blocks := a.detector.Blocks(r.Context())
	out := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, newBlockView(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type blockRequest struct {
	Identity string `json:"identity"`
	Reason   string `json:"reason"`
	// Duration is a Go duration string; empty means the configured block duration.
	Duration string `json:"duration"`
}

func (a *app) createBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	var d time.Duration
	if req.Duration != "" {
		var err error
		if d, err = time.ParseDuration(req.Duration); err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "duration must be a positive Go duration")
			return
		}
	}

	b, err := a.detector.Block(r.Context(), req.Identity, req.Reason, d)
	if errors.Is(err, abuse.ErrKeyRequired) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "identity is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeUnavailable, err.Error())
		return
	}

	a.log.InfoContext(r.Context(), "identity blocked by administrator",
		logger.Identity(b.Key),
		logger.Reason(b.Reason))
	writeJSON(w, http.StatusCreated, newBlockView(b))
}

func (a *app) deleteBlock(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "identity")
	if !a.detector.Unblock(r.Context(), key) {
		writeError(w, http.StatusNotFound, codeNotFound, "no active block for identity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quotaView struct {
	Identity  string    `json:"identity"`
	Tier      string    `json:"tier"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Blocked   bool      `json:"blocked"`
}

func (a *app) quotaTier(w http.ResponseWriter, r *http.Request) (ratelimit.Tier, string, bool) {
	tier, ok := a.gate.Tiers().Get(chi.URLParam(r, "tier"))
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "unknown tier")
		return ratelimit.Tier{}, "", false
	}
	return tier, chi.URLParam(r, "identity"), true
}

func (a *app) quotaStatus(w http.ResponseWriter, r *http.Request) {
	tier, key, ok := a.quotaTier(w, r)
	if !ok {
		return
	}

	res, err := a.counter.Status(r.Context(), key, tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeUnavailable, err.Error())
		return
	}
	_, blocked := a.detector.Blocked(r.Context(), key)

	writeJSON(w, http.StatusOK, quotaView{
		Identity:  key,
		Tier:      tier.Name,
		Limit:     res.Limit,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
		Blocked:   blocked,
	})
}

func (a *app) resetQuota(w http.ResponseWriter, r *http.Request) {
	tier, key, ok := a.quotaTier(w, r)
	if !ok {
		return
	}
	if err := a.counter.Reset(r.Context(), key, tier); err != nil {
		writeError(w, http.StatusInternalServerError, codeUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
