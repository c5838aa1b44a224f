package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

// AdminMiddlewareSuite tests the admin authentication middleware.
//
// Justification: block/unblock and audit queries sit behind this check.
// A wrong or missing token must never reach the handler.
type AdminMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAdminMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AdminMiddlewareSuite))
}

func (s *AdminMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.DiscardHandler)
}

func (s *AdminMiddlewareSuite) serve(expected, presented, actor string) (called bool, gotActor string, code int) {
	handler := RequireAdminToken(expected, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotActor = ActorID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/blocks/x", nil)
	if presented != "" {
		req.Header.Set("X-Admin-Token", presented)
	}
	if actor != "" {
		req.Header.Set("X-Admin-Actor-ID", actor)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return called, gotActor, rr.Code
}

func (s *AdminMiddlewareSuite) TestTokenValidation() {
	s.Run("correct token reaches handler with actor", func() {
		called, actor, code := s.serve("secret", "secret", "ops-7")
		s.True(called)
		s.Equal("ops-7", actor)
		s.Equal(http.StatusOK, code)
	})

	s.Run("actor defaults when header is absent", func() {
		_, actor, _ := s.serve("secret", "secret", "")
		s.Equal("admin", actor)
	})

	s.Run("wrong token is rejected", func() {
		called, _, code := s.serve("secret", "nope", "")
		s.False(called)
		s.Equal(http.StatusUnauthorized, code)
	})

	s.Run("missing token is rejected", func() {
		called, _, code := s.serve("secret", "", "")
		s.False(called)
		s.Equal(http.StatusUnauthorized, code)
	})

	s.Run("empty configured token disables the surface", func() {
		called, _, code := s.serve("", "", "")
		s.False(called)
		s.Equal(http.StatusUnauthorized, code)
	})
}
