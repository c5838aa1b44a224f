package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the coarse permission level carried in access credentials.
type Role string

const (
	RoleAuthor Role = "author"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Subject is an authenticated principal.
type Subject struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	// TokenEpoch invalidates every refresh credential issued before it was bumped.
	TokenEpoch int64
	CreatedAt  time.Time
}

// NewSubject builds an active subject with a fresh ID.
func NewSubject(email, passwordHash string, role Role, now time.Time) *Subject {
	if role == "" {
		role = RoleAuthor
	}
	return &Subject{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
	}
}

// NormalizeEmail lowercases and trims an email for lookup and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
