package content

import (
	"strings"
	"time"
)

// CreateBookRequest is the body of POST /api/books.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// BookResponse is returned when a book draft is created.
type BookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerationKind is the kind of text an AI generation produces.
type GenerationKind string

const (
	GenerationOutline GenerationKind = "outline"
	GenerationChapter GenerationKind = "chapter"
	GenerationSummary GenerationKind = "summary"
)

// CreateGenerationRequest is the body of POST /api/generations.
type CreateGenerationRequest struct {
	BookID string         `json:"book_id" validate:"required,max=64"`
	Kind   GenerationKind `json:"kind" validate:"required,oneof=outline chapter summary"`
	Prompt string         `json:"prompt" validate:"required,max=4000"`
}

func (r *CreateGenerationRequest) Normalize() {
	r.BookID = strings.TrimSpace(r.BookID)
	r.Kind = GenerationKind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
	r.Prompt = strings.TrimSpace(r.Prompt)
}

// GenerationResponse acknowledges a queued generation.
type GenerationResponse struct {
	ID       string         `json:"id"`
	BookID   string         `json:"book_id"`
	Kind     GenerationKind `json:"kind"`
	Status   string         `json:"status"`
	QueuedAt time.Time      `json:"queued_at"`
}
