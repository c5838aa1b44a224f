package admin

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/admin/types"
	"inkwell/internal/reputation"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/httputil"
	adminmw "inkwell/pkg/platform/middleware/admin"
	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/requestcontext"
)

// Handler serves the operator endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// New creates a new admin handler
func New(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers admin routes with the router. Callers mount it behind
// the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/security-events", h.HandleSecurityEvents)
	r.Get("/admin/audit/subjects/{id}", h.HandleSubjectEvents)
	r.Get("/admin/audit/resources/{resource}/{id}", h.HandleResourceEvents)
	r.Post("/admin/blocks", h.HandleBlock)
	r.Get("/admin/blocks/{identifier}", h.HandleGetBlock)
	r.Delete("/admin/blocks/{identifier}", h.HandleUnblock)
	r.Post("/admin/subjects/{id}/revoke", h.HandleRevokeSubject)
}

// HandleSecurityEvents lists security events in a trailing window.
// Query: since (duration, default 24h), limit.
func (h *Handler) HandleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	window := DefaultSecurityWindow
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "since must be a positive duration such as 1h"))
			return
		}
		window = d
	}

	events, err := h.service.RecentSecurityEvents(ctx, window, parseLimit(r))
	if err != nil {
		h.fail(w, r, "failed to list security events", err)
		return
	}
	h.logger.InfoContext(ctx, "admin security events retrieved",
		"request_id", requestcontext.RequestID(ctx),
		"actor", adminmw.ActorID(ctx),
		"count", len(events),
	)
	writeEvents(w, events)
}

func (h *Handler) HandleSubjectEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.SubjectEvents(r.Context(), chi.URLParam(r, "id"), parseLimit(r))
	if err != nil {
		h.fail(w, r, "failed to list subject events", err)
		return
	}
	writeEvents(w, events)
}

func (h *Handler) HandleResourceEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ResourceEvents(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"), parseLimit(r))
	if err != nil {
		h.fail(w, r, "failed to list resource events", err)
		return
	}
	writeEvents(w, events)
}

// HandleBlock places a manual block.
func (h *Handler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[types.BlockRequest](ctx, w, r, h.logger)
	if !ok {
		return
	}
	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "duration must be a duration such as 15m or 24h"))
		return
	}

	entry, err := h.service.Block(ctx, req.Identifier, duration, req.Reason)
	if err != nil {
		h.fail(w, r, "failed to block identifier", err)
		return
	}
	h.logger.InfoContext(ctx, "identifier blocked by operator",
		"request_id", requestcontext.RequestID(ctx),
		"actor", adminmw.ActorID(ctx),
		"identifier_prefix", privacy.AnonymizeIP(req.Identifier),
		"duration", duration.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toBlockResponse(entry))
}

func (h *Handler) HandleGetBlock(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetBlock(r.Context(), chi.URLParam(r, "identifier"))
	if err != nil {
		h.fail(w, r, "failed to read block", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBlockResponse(entry))
}

// HandleUnblock removes a block. Unblocking an identifier that is not
// blocked still succeeds.
func (h *Handler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unblock(r.Context(), chi.URLParam(r, "identifier")); err != nil {
		h.fail(w, r, "failed to unblock identifier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeSubject revokes every refresh credential of a subject.
// Query: deactivate=true also disables the subject.
func (h *Handler) HandleRevokeSubject(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "id")
	deactivate, _ := strconv.ParseBool(r.URL.Query().Get("deactivate"))
	epoch, err := h.service.RevokeSubject(r.Context(), subjectID, deactivate)
	if err != nil {
		h.fail(w, r, "failed to revoke subject", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, types.RevokeResponse{SubjectID: subjectID, TokenEpoch: epoch})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeStoreUnavailable:
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	default:
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func writeEvents(w http.ResponseWriter, events []audit.Event) {
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, types.EventsResponse{Events: events, Total: len(events)})
}

func toBlockResponse(e *reputation.BlockEntry) types.BlockResponse {
	return types.BlockResponse{
		Identifier: e.Identifier,
		Reason:     e.Reason,
		Source:     string(e.Source),
		Actor:      e.Actor,
		CreatedAt:  e.CreatedAt,
		ExpiresAt:  e.ExpiresAt,
	}
}
