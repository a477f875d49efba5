package admission_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/gatekeeper/pkg/admission"
)

func TestResult_RetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		reset time.Time
		want  int
	}{
		{"exact seconds", now.Add(30 * time.Second), 30},
		{"rounds up", now.Add(1500 * time.Millisecond), 2},
		{"sub second", now.Add(time.Millisecond), 1},
		{"now", now, 0},
		{"past", now.Add(-time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, admission.Result{Reset: tt.reset}.RetryAfter(now))
		})
	}
}

func TestResult_Headers(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	reset := now.Add(42 * time.Second)

	ok := admission.Result{Success: true, Limit: 10, Remaining: 7, Reset: reset}.Headers(now)
	assert.Equal(t, "10", ok.Get(admission.HeaderLimit))
	assert.Equal(t, "7", ok.Get(admission.HeaderRemaining))
	assert.Equal(t, "1735689642", ok.Get(admission.HeaderReset))
	assert.Empty(t, ok.Get(admission.HeaderRetryAfter))

	denied := admission.Result{Limit: 10, Remaining: -1, Reset: reset}
	h := denied.Headers(now)
	assert.Equal(t, "0", h.Get(admission.HeaderRemaining))
	assert.Equal(t, "42", h.Get(admission.HeaderRetryAfter))

	rec := httptest.NewRecorder()
	denied.WriteHeaders(rec, now)
	assert.Equal(t, "42", rec.Header().Get(admission.HeaderRetryAfter))
}

func TestResult_CodeAndPayload(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		res     admission.Result
		code    string
		message string
	}{
		{"allowed", admission.Result{Success: true}, "", ""},
		{"quota", admission.Result{}, admission.CodeRateLimitExceeded, "rate limit exceeded, try again later"},
		{"blocked", admission.Result{Blocked: true, BlockReason: "abuse"}, admission.CodeIPBlocked, "access blocked: abuse"},
		{"blocked without reason", admission.Result{Blocked: true}, admission.CodeIPBlocked, "access blocked"},
		{"unresolved", admission.Result{Unresolved: true}, admission.CodeIdentityUnresolved, "request identity could not be determined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.code, tt.res.Code())
			assert.Equal(t, tt.message, tt.res.Message())
		})
	}

	p := admission.Result{Limit: 5, Reset: now.Add(10 * time.Second)}.Payload(now)
	assert.Equal(t, admission.ErrorPayload{
		Code:       admission.CodeRateLimitExceeded,
		Message:    "rate limit exceeded, try again later",
		Limit:      5,
		Remaining:  0,
		Reset:      now.Add(10 * time.Second).UnixMilli(),
		RetryAfter: 10,
	}, p)
}
