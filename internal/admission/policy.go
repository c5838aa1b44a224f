package admission

import "inkwell/internal/ratelimit/models"

// AuthMode selects how a route treats bearer credentials.
type AuthMode int

const (
	// AuthNone ignores the Authorization header.
	AuthNone AuthMode = iota
	// AuthOptional resolves a principal when a valid credential is
	// presented and proceeds anonymously otherwise.
	AuthOptional
	// AuthRequired rejects requests without a valid access credential.
	AuthRequired
)

func (m AuthMode) String() string {
	switch m {
	case AuthOptional:
		return "optional"
	case AuthRequired:
		return "required"
	default:
		return "none"
	}
}

// Policy is the static admission configuration of one route.
type Policy struct {
	// Scope selects the rate budget. Empty disables rate limiting.
	Scope models.Scope
	Auth  AuthMode
	// Screen enables the malicious-input screen on body and query.
	Screen bool
	// CountFailuresOnly retracts the window entry when the handler
	// responds with a status below 400.
	CountFailuresOnly bool
}

// Outcome is the terminal state of one admission pass.
type Outcome string

const (
	OutcomeAdmitted        Outcome = "admitted"
	OutcomeForbidden       Outcome = "forbidden"
	OutcomeUnauthorized    Outcome = "unauthorized"
	OutcomeTooManyRequests Outcome = "too_many_requests"
	OutcomeBadRequest      Outcome = "bad_request"
)
