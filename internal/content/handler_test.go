package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"inkwell/internal/admission"
	"inkwell/internal/content/mocks"
	rlconfig "inkwell/internal/ratelimit/config"
	"inkwell/internal/ratelimit/limiter"
	"inkwell/internal/ratelimit/models"
	"inkwell/internal/reputation"
	"inkwell/internal/sharedstore"
	"inkwell/internal/token"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/requestcontext"
)

const authorID = "6f1c7a6e-9b9d-4e55-8d7e-3c1f5b2a0c11"

// ContentHandlerSuite covers the thin authoring handlers.
//
// Justification: these routes are the reason the admission pipeline exists;
// they must attribute domain events to the caller and reject anonymous use.
type ContentHandlerSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	events *mocks.MockEventReporter
	router http.Handler
	now    time.Time
}

func TestContentHandlerSuite(t *testing.T) {
	suite.Run(t, new(ContentHandlerSuite))
}

func (s *ContentHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.events = mocks.NewMockEventReporter(s.ctrl)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	authenticated := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requesttime.WithTime(r.Context(), s.now)
			if r.Header.Get("Authorization") != "" {
				ctx = admission.WithPrincipal(ctx, &admission.Principal{SubjectID: authorID, Role: "author"})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	r := chi.NewRouter()
	New(s.events, slog.New(slog.DiscardHandler)).Register(r, Routes{Books: authenticated, Generations: authenticated})
	s.router = r
}

func (s *ContentHandlerSuite) do(target, body string, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signedIn {
		req.Header.Set("Authorization", "Bearer x")
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// =============================================================================
// Books
// =============================================================================

func (s *ContentHandlerSuite) TestCreateBook() {
	var eventID string
	s.events.EXPECT().ReportDomainEvent(gomock.Any(), audit.ActionBookCreated, "book", gomock.Any(), map[string]string{"title_length": "11"}).
		Do(func(_ context.Context, _, _, id string, _ map[string]string) { eventID = id })

	rr := s.do("/api/books", `{"title":" The Harbour ","description":"A novel"}`, true)

	s.Equal(http.StatusCreated, rr.Code)
	var got BookResponse
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &got))
	s.Equal("The Harbour", got.Title)
	s.Equal(authorID, got.AuthorID)
	s.Equal(eventID, got.ID)
	s.Len(got.ID, 26)
	s.True(got.CreatedAt.Equal(s.now))
}

func (s *ContentHandlerSuite) TestCreateBookRequiresPrincipal() {
	rr := s.do("/api/books", `{"title":"Anonymous"}`, false)
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *ContentHandlerSuite) TestCreateBookValidation() {
	cases := map[string]string{
		"missing title":  `{"description":"x"}`,
		"title too long": `{"title":"` + strings.Repeat("t", 201) + `"}`,
		"unknown field":  `{"title":"ok","genre":"noir"}`,
	}
	for name, body := range cases {
		s.Run(name, func() {
			rr := s.do("/api/books", body, true)
			s.Equal(http.StatusBadRequest, rr.Code)
		})
	}
}

// =============================================================================
// Generations
// =============================================================================

func (s *ContentHandlerSuite) TestCreateGeneration() {
	s.events.EXPECT().ReportDomainEvent(gomock.Any(), audit.ActionGenerationQueued, "generation", gomock.Any(),
		map[string]string{"book_id": "01HZZZZZZZZZZZZZZZZZZZZZZZ", "kind": "outline"})

	rr := s.do("/api/generations", `{"book_id":"01HZZZZZZZZZZZZZZZZZZZZZZZ","kind":"Outline","prompt":"three acts"}`, true)

	s.Equal(http.StatusAccepted, rr.Code)
	var got GenerationResponse
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &got))
	s.Equal("queued", got.Status)
	s.Equal(GenerationOutline, got.Kind)
}

func (s *ContentHandlerSuite) TestCreateGenerationRejectsUnknownKind() {
	rr := s.do("/api/generations", `{"book_id":"b1","kind":"poem","prompt":"x"}`, true)
	s.Equal(http.StatusBadRequest, rr.Code)
}

// TestBooksBehindAdmission drives the book route through a real pipeline:
// screened content never reaches the handler and the caller's own budget
// is charged, not the source address.
func TestBooksBehindAdmission(t *testing.T) {
	store := sharedstore.NewMemoryStore()
	discard := slog.New(slog.DiscardHandler)
	lim, err := limiter.New(store, limiter.WithLogger(discard))
	require.NoError(t, err)
	rep, err := reputation.New(store)
	require.NoError(t, err)
	tokens, err := token.New(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "inkwell",
		Audience:      "inkwell-api",
	})
	require.NoError(t, err)
	pipeline, err := admission.New(rep, tokens, lim, rlconfig.DefaultConfig().Scopes, admission.WithLogger(discard))
	require.NoError(t, err)

	books := pipeline.Admit(admission.Policy{Scope: models.ScopeBookCreation, Auth: admission.AuthRequired, Screen: true})
	r := chi.NewRouter()
	New(pipeline, discard).Register(r, Routes{Books: books, Generations: books})

	pair, err := tokens.Issue(context.Background(), authorID, "author")
	require.NoError(t, err)

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "198.51.100.4", "test"))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	clean := send(`{"title":"Field Notes"}`)
	require.Equal(t, http.StatusCreated, clean.Code)
	require.Equal(t, "30", clean.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "29", clean.Header().Get("X-RateLimit-Remaining"))

	hostile := send(`{"title":"<script>alert(1)</script>"}`)
	require.Equal(t, http.StatusBadRequest, hostile.Code)
	require.NotContains(t, hostile.Body.String(), "script_tag")
	require.NotContains(t, hostile.Body.String(), "alert(1)")
}
