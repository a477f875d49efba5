package admission

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// Denial codes surfaced in ErrorPayload.
const (
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeIPBlocked          = "IP_BLOCKED"
	CodeIdentityUnresolved = "IDENTITY_UNRESOLVED"
)

// Response headers attached to every guarded response.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Result is the admission decision for one request.
type Result struct {
	Success bool
	// Blocked is set when an unexpired block short-circuited the decision.
	Blocked     bool
	BlockReason string
	// BlockedBy is the blocked key: the identifier or the network address.
	BlockedBy string
	// Unresolved is set when the request had no identity and policy denied it.
	Unresolved bool
	Limit      int
	Remaining  int
	// Reset is the end of the current window, or of the block when Blocked.
	Reset time.Time
}

// Code returns the denial code, or "" for an admitted request.
func (r Result) Code() string {
	switch {
	case r.Success:
		return ""
	case r.Blocked:
		return CodeIPBlocked
	case r.Unresolved:
		return CodeIdentityUnresolved
	default:
		return CodeRateLimitExceeded
	}
}

// Message returns a human-readable explanation of a denial.
func (r Result) Message() string {
	switch {
	case r.Success:
		return ""
	case r.Blocked && r.BlockReason != "":
		return "access blocked: " + r.BlockReason
	case r.Blocked:
		return "access blocked"
	case r.Unresolved:
		return "request identity could not be determined"
	default:
		return "rate limit exceeded, try again later"
	}
}

// RetryAfter returns the whole seconds until Reset, rounded up and never
// negative.
func (r Result) RetryAfter(now time.Time) int {
	d := r.Reset.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// Headers returns the quota headers for the decision. Retry-After is only
// present on denials.
func (r Result) Headers(now time.Time) http.Header {
	h := make(http.Header, 4)
	h.Set(HeaderLimit, strconv.Itoa(r.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(max(0, r.Remaining)))
	h.Set(HeaderReset, strconv.FormatInt(r.Reset.Unix(), 10))
	if !r.Success {
		h.Set(HeaderRetryAfter, strconv.Itoa(r.RetryAfter(now)))
	}
	return h
}

// WriteHeaders copies the quota headers onto w.
func (r Result) WriteHeaders(w http.ResponseWriter, now time.Time) {
	dst := w.Header()
	for k, v := range r.Headers(now) {
		dst[k] = v
	}
}

// ErrorPayload is the body of a denied response.
type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	// Reset is epoch milliseconds; X-RateLimit-Reset carries epoch seconds.
	Reset      int64 `json:"reset"`
	RetryAfter int   `json:"retryAfter"`
}

// Payload builds the denial body for r.
func (r Result) Payload(now time.Time) ErrorPayload {
	return ErrorPayload{
		Code:       r.Code(),
		Message:    r.Message(),
		Limit:      r.Limit,
		Remaining:  max(0, r.Remaining),
		Reset:      r.Reset.UnixMilli(),
		RetryAfter: r.RetryAfter(now),
	}
}
