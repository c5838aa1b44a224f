package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestReadiness(t *testing.T) {
	h := New("test", slog.New(slog.DiscardHandler))
	h.RegisterCheck("redis", func(context.Context) error { return nil })

	rr := serve(h, "/health/ready")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"redis":"up"}}`, rr.Body.String())

	h.RegisterCheck("postgres", func(context.Context) error { return errors.New("dial tcp 10.1.2.3:5432: refused") })
	rr = serve(h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.1.2.3")
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test", nil)
	assert.Equal(t, http.StatusOK, serve(h, "/health/live").Code)

	rr := serve(h, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"environment":"test"`)
}
