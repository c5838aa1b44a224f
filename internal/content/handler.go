// Package content serves the authoring endpoints that sit behind the
// admission pipeline. The handlers only acknowledge requests and record
// domain events; drafting and generation happen elsewhere.
package content

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"inkwell/internal/admission"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/httputil"
	"inkwell/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// EventReporter records domain events for the current request.
type EventReporter interface {
	ReportDomainEvent(ctx context.Context, action, resource, resourceID string, metadata map[string]string)
}

// Handler serves the content endpoints.
type Handler struct {
	events EventReporter
	logger *slog.Logger
}

// New creates a content handler.
func New(events EventReporter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{events: events, logger: logger}
}

// Routes holds the admission middleware for each content route.
type Routes struct {
	Books       func(http.Handler) http.Handler
	Generations func(http.Handler) http.Handler
}

// Register registers the content routes.
func (h *Handler) Register(r chi.Router, mw Routes) {
	r.With(mw.Books).Post("/api/books", h.HandleCreateBook)
	r.With(mw.Generations).Post("/api/generations", h.HandleCreateGeneration)
}

// HandleCreateBook creates a book draft for the caller.
//
// Input: { "title": "...", "description": "..." }
// Output: 201 { "id": "...", "title": "...", "author_id": "...", "created_at": "..." }
func (h *Handler) HandleCreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authorID := admission.SubjectID(ctx)
	if authorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateBookRequest](ctx, w, r, h.logger)
	if !ok {
		return
	}

	book := BookResponse{
		ID:          ulid.Make().String(),
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    authorID,
		CreatedAt:   requesttime.Now(ctx),
	}
	h.events.ReportDomainEvent(ctx, audit.ActionBookCreated, "book", book.ID, map[string]string{
		"title_length": strconv.Itoa(len(book.Title)),
	})
	httputil.WriteJSON(w, http.StatusCreated, book)
}

// HandleCreateGeneration queues an AI generation against a book.
//
// Output: 202 { "id": "...", "book_id": "...", "kind": "outline", "status": "queued" }
func (h *Handler) HandleCreateGeneration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if admission.SubjectID(ctx) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateGenerationRequest](ctx, w, r, h.logger)
	if !ok {
		return
	}

	gen := GenerationResponse{
		ID:       ulid.Make().String(),
		BookID:   req.BookID,
		Kind:     req.Kind,
		Status:   "queued",
		QueuedAt: requesttime.Now(ctx),
	}
	h.events.ReportDomainEvent(ctx, audit.ActionGenerationQueued, "generation", gen.ID, map[string]string{
		"book_id": gen.BookID,
		"kind":    string(gen.Kind),
	})
	httputil.WriteJSON(w, http.StatusAccepted, gen)
}
