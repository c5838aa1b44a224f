package models

import (
	"strings"
	"time"

	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/validation"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// LoginRequest is the body of POST /auth/login. Length limits are checked
// in Validate so that oversized input fails the same way as a wrong password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if len(r.Email) > validation.MaxEmailLength || len(r.Password) > validation.MaxPasswordLength {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return nil
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,max=2048"`
}

func (r *RefreshRequest) Normalize() {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
}

// SubjectResponse is the public view of a subject.
type SubjectResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LogoutAllResponse reports the subject's new token epoch.
type LogoutAllResponse struct {
	Revoked    bool  `json:"revoked"`
	TokenEpoch int64 `json:"token_epoch"`
}
