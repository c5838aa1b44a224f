package audit

import (
	"context"
	"time"
)

// Category separates trust-layer events from domain activity.
type Category string

const (
	CategorySecurity Category = "security"
	CategoryDomain   Category = "domain"
)

// Action names recorded by the admission layer and the admin surface.
const (
	ActionBlockedRequest         = "blocked_request"
	ActionAuthRejected           = "auth_rejected"
	ActionRateLimitExceeded      = "rate_limit_exceeded"
	ActionMaliciousInputDetected = "malicious_input_detected"
	ActionIPBlocked              = "ip_blocked"
	ActionIPUnblocked            = "ip_unblocked"
	ActionLoginFailed            = "login_failed"
	ActionRefreshReused          = "refresh_reused"
	ActionLogoutAll              = "logout_all"
	ActionSubjectDeactivated     = "subject_deactivated"

	ActionSubjectRegistered = "subject_registered"
	ActionLoginSucceeded    = "login_succeeded"
	ActionBookCreated       = "book_created"
	ActionGenerationQueued  = "generation_queued"
)

// Event is one append-only audit record. ID and CreatedAt are always
// assigned by the sink; values supplied by callers are overwritten.
type Event struct {
	ID            string            `json:"id"`
	Category      Category          `json:"category"`
	Action        string            `json:"action"`
	SubjectID     string            `json:"subject_id,omitempty"`
	Resource      string            `json:"resource,omitempty"`
	ResourceID    string            `json:"resource_id,omitempty"`
	SourceAddress string            `json:"source_address,omitempty"`
	UserAgent     string            `json:"user_agent,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks

// Store persists audit events. List methods return newest first and at
// most limit events; callers clamp limit.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]Event, error)
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]Event, error)
	ListSecuritySince(ctx context.Context, since time.Time, limit int) ([]Event, error)
	// DeleteBefore removes events created strictly before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Recorder is the write side used by request-path code. Record never fails
// the caller.
type Recorder interface {
	Record(ctx context.Context, event Event)
}
