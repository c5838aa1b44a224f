package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/admission"
	"inkwell/internal/auth/models"
	subjectmodels "inkwell/internal/subject/models"
	"inkwell/internal/token"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/httputil"
	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Subjects registers and authenticates subjects.
type Subjects interface {
	Register(ctx context.Context, email, password string) (*subjectmodels.Subject, error)
	Authenticate(ctx context.Context, email, password string) (*subjectmodels.Subject, error)
	Get(ctx context.Context, subjectID string) (*subjectmodels.Subject, error)
	RevokeAll(ctx context.Context, subjectID string) (int64, error)
}

// Tokens issues and rotates credential pairs.
type Tokens interface {
	Issue(ctx context.Context, subjectID, role string, opts ...token.IssueOption) (*token.CredentialPair, error)
	Rotate(ctx context.Context, refreshToken string) (*token.CredentialPair, error)
}

// EventReporter records domain events for the current request.
type EventReporter interface {
	ReportDomainEvent(ctx context.Context, action, resource, resourceID string, metadata map[string]string)
}

// Handler serves the identity endpoints.
type Handler struct {
	subjects Subjects
	tokens   Tokens
	events   EventReporter
	audit    *audit.Logger
	logger   *slog.Logger
}

// New creates an auth handler. securityLog receives login failures and
// logout-all events.
func New(subjects Subjects, tokens Tokens, events EventReporter, securityLog *audit.Logger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if securityLog == nil {
		securityLog = audit.NewLogger(logger, nil)
	}
	return &Handler{
		subjects: subjects,
		tokens:   tokens,
		events:   events,
		audit:    securityLog,
		logger:   logger,
	}
}

// Routes holds the admission middleware for each identity route.
type Routes struct {
	Register  func(http.Handler) http.Handler
	Login     func(http.Handler) http.Handler
	Refresh   func(http.Handler) http.Handler
	LogoutAll func(http.Handler) http.Handler
	Me        func(http.Handler) http.Handler
}

// Register registers the auth routes, each behind its admission middleware.
func (h *Handler) Register(r chi.Router, mw Routes) {
	r.With(mw.Register).Post("/auth/register", h.HandleRegister)
	r.With(mw.Login).Post("/auth/login", h.HandleLogin)
	r.With(mw.Refresh).Post("/auth/refresh", h.HandleRefresh)
	r.With(mw.LogoutAll).Post("/auth/logout-all", h.HandleLogoutAll)
	r.With(mw.Me).Get("/api/me", h.HandleMe)
}

// HandleRegister creates a subject.
//
// Input: { "email": "writer@example.com", "password": "..." }
// Output: 201 { "id": "...", "email": "...", "role": "author", "created_at": "..." }
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](ctx, w, r, h.logger)
	if !ok {
		return
	}

	subject, err := h.subjects.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err,
			"email", privacy.MaskEmail(req.Email),
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	ctx = admission.WithPrincipal(ctx, &admission.Principal{SubjectID: subject.ID.String(), Role: string(subject.Role)})
	h.events.ReportDomainEvent(ctx, audit.ActionSubjectRegistered, "subject", subject.ID.String(), nil)
	httputil.WriteJSON(w, http.StatusCreated, toSubjectResponse(subject))
}

// HandleLogin exchanges an email and password for a credential pair. Every
// failure returns the same "invalid credentials" response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](ctx, w, r, h.logger)
	if !ok {
		return
	}

	subject, err := h.subjects.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.audit.Security(ctx, audit.Event{
				Action:   audit.ActionLoginFailed,
				Metadata: map[string]string{"email": privacy.MaskEmail(req.Email)},
			})
		} else {
			h.logger.ErrorContext(ctx, "login failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		}
		httputil.WriteError(w, err)
		return
	}

	pair, err := h.tokens.Issue(ctx, subject.ID.String(), string(subject.Role), token.WithEpoch(subject.TokenEpoch))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue credentials", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	ctx = admission.WithPrincipal(ctx, &admission.Principal{SubjectID: subject.ID.String(), Role: string(subject.Role), TokenKind: token.KindAccess})
	h.events.ReportDomainEvent(ctx, audit.ActionLoginSucceeded, "subject", subject.ID.String(), nil)
	httputil.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh rotates a refresh credential.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.RefreshRequest](ctx, w, r, h.logger)
	if !ok {
		return
	}

	pair, err := h.tokens.Rotate(ctx, req.RefreshToken)
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeInternal, dErrors.CodeStoreUnavailable:
			h.logger.ErrorContext(ctx, "refresh failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		default:
			h.logger.WarnContext(ctx, "refresh rejected", "error", err, "request_id", requestcontext.RequestID(ctx))
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogoutAll revokes every refresh credential of the caller. Access
// credentials already issued stay valid until they expire.
func (h *Handler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := admission.SubjectID(ctx)
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	epoch, err := h.subjects.RevokeAll(ctx, subjectID)
	if err != nil {
		h.logger.ErrorContext(ctx, "logout-all failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	h.audit.Security(ctx, audit.Event{
		Action:     audit.ActionLogoutAll,
		SubjectID:  subjectID,
		Resource:   "subject",
		ResourceID: subjectID,
	})
	httputil.WriteJSON(w, http.StatusOK, models.LogoutAllResponse{Revoked: true, TokenEpoch: epoch})
}

// HandleMe returns the authenticated subject.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := admission.SubjectID(ctx)
	if subjectID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	subject, err := h.subjects.Get(ctx, subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubjectResponse(subject))
}

func toSubjectResponse(s *subjectmodels.Subject) models.SubjectResponse {
	return models.SubjectResponse{
		ID:        s.ID.String(),
		Email:     s.Email,
		Role:      string(s.Role),
		CreatedAt: s.CreatedAt,
	}
}
