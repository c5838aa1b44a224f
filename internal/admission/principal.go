package admission

import (
	"context"

	"inkwell/internal/token"
)

// Principal is the caller identity resolved from a valid access credential.
// TokenKind is the kind of credential that produced it; the pipeline only
// ever admits token.KindAccess.
type Principal struct {
	SubjectID string
	Role      string
	TokenKind token.Kind
	// TokenID is the credential's jti, empty when the principal was not
	// built from a presented credential.
	TokenID string
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx. The second result is
// false for anonymous requests.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// SubjectID returns the principal's subject ID, or "" when anonymous.
func SubjectID(ctx context.Context) string {
	if p, ok := PrincipalFrom(ctx); ok {
		return p.SubjectID
	}
	return ""
}
