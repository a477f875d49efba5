package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/gatekeeper/pkg/abuse"
	"github.com/dmitrymomot/gatekeeper/pkg/admission"
	"github.com/dmitrymomot/gatekeeper/pkg/identity"
	"github.com/dmitrymomot/gatekeeper/pkg/logger"
	"github.com/dmitrymomot/gatekeeper/pkg/ratelimit"
	"github.com/dmitrymomot/gatekeeper/pkg/requestid"
	"github.com/dmitrymomot/gatekeeper/pkg/throttle"
)

// Error codes returned by the gateway itself, next to the admission codes.
const (
	codeUpstreamBusy        = "UPSTREAM_QUEUE_FULL"
	codeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

const (
	adminFailureBurst  = 5
	adminFailureRefill = time.Minute
)

// app holds every long-lived component of the gateway.
type app struct {
	cfg appConfig
	log *slog.Logger

	store    *ratelimit.MemoryStore
	counter  *ratelimit.Counter
	detector *abuse.Detector
	stats    *admission.MemoryRecorder
	events   *admission.AsyncRecorder
	gate     *admission.Limiter
	throttle *throttle.Limiter
	rdb      goredis.UniversalClient

	backend  http.Handler
	upstream http.Handler

	adminFailures *rate.Limiter
}

// newApp wires the gateway. rdb is optional; without it admission events
// are only counted in memory.
func newApp(cfg appConfig, log *slog.Logger, rdb goredis.UniversalClient) (*app, error) {
	tiers, err := ratelimit.LoadTiers(cfg.TiersFile)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:           cfg,
		log:           log,
		rdb:           rdb,
		stats:         admission.NewMemoryRecorder(),
		adminFailures: rate.NewLimiter(rate.Every(adminFailureRefill), adminFailureBurst),
	}

	a.store = ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(cfg.CleanupInterval))
	if a.counter, err = ratelimit.NewCounter(a.store); err != nil {
		a.close()
		return nil, err
	}

	a.detector, err = abuse.New(cfg.Abuse,
		abuse.WithLogger(log),
		abuse.WithCleanupInterval(cfg.CleanupInterval),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	recorders := admission.MultiRecorder{a.stats}
	if rdb != nil {
		a.events = admission.NewAsyncRecorder(admission.NewRedisRecorder(rdb),
			admission.WithBufferSize(cfg.RecordBuffer),
			admission.WithRecordTimeout(cfg.RecordTimeout),
			admission.WithRecorderLogger(log),
		)
		recorders = append(recorders, a.events)
	}

	userIDHeader := cfg.UserIDHeader
	a.gate, err = admission.New(a.counter, a.detector,
		admission.WithTiers(tiers),
		admission.WithUnresolvedPolicy(cfg.UnresolvedPolicy),
		admission.WithResolver(identity.NewResolver(
			identity.WithUserIDFunc(func(r *http.Request) string {
				if userIDHeader == "" {
					return ""
				}
				return r.Header.Get(userIDHeader)
			}),
		)),
		admission.WithRecorder(recorders),
		admission.WithLogger(log),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	if a.throttle, err = throttle.New(cfg.Throttle, throttle.WithLogger(log)); err != nil {
		a.close()
		return nil, err
	}

	a.backend = admittedHandler()
	if cfg.BackendURL != "" {
		target, err := parseTargetURL(cfg.BackendURL)
		if err != nil {
			a.close()
			return nil, err
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.Transport = requestid.Transport{}
		proxy.ErrorHandler = a.proxyError
		a.backend = proxy
	}

	if cfg.UpstreamURL != "" {
		target, err := parseTargetURL(cfg.UpstreamURL)
		if err != nil {
			a.close()
			return nil, err
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.Transport = requestid.Transport{Base: throttle.NewTransport(a.throttle, nil)}
		proxy.ErrorHandler = a.proxyError
		a.upstream = http.StripPrefix("/upstream", proxy)
	}

	return a, nil
}

// close releases the background workers. The throttle limiter is closed
// by its Run loop.
func (a *app) close() {
	if a.events != nil {
		_ = a.events.Close()
	}
	if a.detector != nil {
		_ = a.detector.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

func (a *app) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, throttle.ErrQueueFull) {
		state := a.throttle.State()
		secs := int(math.Ceil(state.TimeUntilReset.Seconds()))
		w.Header().Set(admission.HeaderRetryAfter, strconv.Itoa(secs))
		writeError(w, http.StatusServiceUnavailable, codeUpstreamBusy, err.Error())
		return
	}

	a.log.ErrorContext(r.Context(), "proxy request failed",
		slog.String("path", r.URL.Path),
		logger.Error(err))
	writeError(w, http.StatusBadGateway, codeUpstreamUnavailable, "upstream request failed")
}

// admittedHandler answers admitted requests when no backend is configured.
func admittedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "admitted",
			"path":   r.URL.Path,
		})
	})
}

type jsonResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonResponse{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonResponse{Error: &errorBody{
		Code:    code,
		Message: strings.TrimSpace(message),
	}})
}
