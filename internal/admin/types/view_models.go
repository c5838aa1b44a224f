package types

import (
	"strings"
	"time"

	"inkwell/pkg/platform/audit"
)

// BlockRequest is the body of POST /admin/blocks. Duration is a Go
// duration string such as "15m" or "24h".
type BlockRequest struct {
	Identifier string `json:"identifier" validate:"required,max=128"`
	Duration   string `json:"duration" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=500"`
}

func (r *BlockRequest) Normalize() {
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Duration = strings.TrimSpace(r.Duration)
	r.Reason = strings.TrimSpace(r.Reason)
}

// BlockResponse describes an active block.
type BlockResponse struct {
	Identifier string    `json:"identifier"`
	Reason     string    `json:"reason"`
	Source     string    `json:"source"`
	Actor      string    `json:"actor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// EventsResponse wraps a newest-first page of audit events.
type EventsResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

// RevokeResponse reports the subject's token epoch after a revocation.
type RevokeResponse struct {
	SubjectID  string `json:"subject_id"`
	TokenEpoch int64  `json:"token_epoch"`
}
