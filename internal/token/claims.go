package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access credentials from refresh credentials.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims are carried by both credential kinds. Kind decides which secret
// signed the token.
type Claims struct {
	Role  string `json:"role"`
	Kind  Kind   `json:"kind"`
	Epoch int64  `json:"epoch"`
	jwt.RegisteredClaims
}

// SubjectID returns the subject the credential was issued to.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// CredentialPair is what Issue and Rotate hand back to the client.
type CredentialPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// SubjectState is the part of a subject the rotation flow needs.
type SubjectState struct {
	Role       string
	Active     bool
	TokenEpoch int64
}
