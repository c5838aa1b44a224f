package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGlobalThrottle_ShedsBeyondBurst(t *testing.T) {
	// A near-zero refill rate keeps the test independent of timing.
	h := NewGlobalThrottle(0.0001, 3).Middleware(okHandler())

	var codes []int
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 200, 503, 503}, codes)
}

func TestGlobalThrottle_RetryAfterOnShed(t *testing.T) {
	h := NewGlobalThrottle(0.0001, 1).Middleware(okHandler())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "service_unavailable")
}

func TestGlobalThrottle_DisabledWhenRateIsZero(t *testing.T) {
	h := NewGlobalThrottle(0, 0).Middleware(okHandler())

	for range 100 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
