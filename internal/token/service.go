// Package token issues and verifies the gateway's bearer credentials.
//
// Access and refresh credentials are HS256 JWTs signed with two different
// secrets. The kind claim selects the verification key, so a refresh
// credential can never pass as an access credential even if both secrets
// leak independently.
package token

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inkwell/internal/platform/metrics"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// SubjectLookup resolves the current state of a subject during rotation.
// Implementations return a CodeNotFound or CodeSubjectNotFound error when the
// subject does not exist. RevokeAll bumps the subject's token epoch and
// returns the new value.
type SubjectLookup interface {
	TokenState(ctx context.Context, subjectID string) (*SubjectState, error)
	RevokeAll(ctx context.Context, subjectID string) (int64, error)
}

// ConsumedStore remembers refresh credentials that were already rotated.
type ConsumedStore interface {
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// Config holds the signing material and lifetimes.
type Config struct {
	AccessSecret   string
	RefreshSecret  string
	Issuer         string
	Audience       string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	ReuseDetection bool
}

const (
	defaultAccessTTL  = 7 * 24 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour

	consumedKeyPrefix = "refresh:consumed:"
)

// Service issues, validates and rotates credentials.
type Service struct {
	accessKey      []byte
	refreshKey     []byte
	issuer         string
	audience       string
	accessTTL      time.Duration
	refreshTTL     time.Duration
	reuseDetection bool

	subjects SubjectLookup
	consumed ConsumedStore
	audit    *audit.Logger
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAudit records refresh reuse as a security event.
func WithAudit(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

// WithSubjectLookup enables Rotate.
func WithSubjectLookup(l SubjectLookup) Option {
	return func(s *Service) {
		s.subjects = l
	}
}

// WithConsumedStore enables single-use refresh credentials when
// Config.ReuseDetection is set.
func WithConsumedStore(c ConsumedStore) Option {
	return func(s *Service) {
		s.consumed = c
	}
}

// New validates cfg and builds a Service.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience are required")
	}
	s := &Service{
		accessKey:      []byte(cfg.AccessSecret),
		refreshKey:     []byte(cfg.RefreshSecret),
		issuer:         cfg.Issuer,
		audience:       cfg.Audience,
		accessTTL:      cfg.AccessTTL,
		refreshTTL:     cfg.RefreshTTL,
		reuseDetection: cfg.ReuseDetection,
		logger:         slog.Default(),
	}
	if s.accessTTL <= 0 {
		s.accessTTL = defaultAccessTTL
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = defaultRefreshTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type issueOptions struct {
	epoch int64
}

// IssueOption customises a single Issue call.
type IssueOption func(*issueOptions)

// WithEpoch embeds the subject's current token epoch in both credentials.
func WithEpoch(epoch int64) IssueOption {
	return func(o *issueOptions) {
		o.epoch = epoch
	}
}

// Issue signs a fresh access/refresh pair for subjectID.
func (s *Service) Issue(ctx context.Context, subjectID, role string, opts ...IssueOption) (*CredentialPair, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject id is required")
	}
	o := issueOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	now := requesttime.Now(ctx)

	access, accessExp, err := s.sign(now, subjectID, role, KindAccess, o.epoch)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access credential")
	}
	refresh, refreshExp, err := s.sign(now, subjectID, role, KindRefresh, o.epoch)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign refresh credential")
	}
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued()
	}
	return &CredentialPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) sign(now time.Time, subjectID, role string, kind Kind, epoch int64) (string, time.Time, error) {
	key, ttl := s.accessKey, s.accessTTL
	if kind == KindRefresh {
		key, ttl = s.refreshKey, s.refreshTTL
	}
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:  role,
		Kind:  kind,
		Epoch: epoch,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ValidateAccess verifies an access credential. A genuine refresh
// credential yields CodeWrongCredentialKind; anything else that does not
// verify yields CodeInvalidToken or CodeExpiredToken.
func (s *Service) ValidateAccess(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.parse(ctx, raw, KindAccess)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementTokenRejection(string(dErrors.CodeOf(err)))
		}
		return nil, err
	}
	return claims, nil
}

// ValidateRefresh verifies a refresh credential without consuming it.
func (s *Service) ValidateRefresh(ctx context.Context, raw string) (*Claims, error) {
	return s.parse(ctx, raw, KindRefresh)
}

func (s *Service) parse(ctx context.Context, raw string, want Kind) (*Claims, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeInvalidToken, "empty credential")
	}
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(requesttime.Clock(ctx)),
	)
	_, err := parser.ParseWithClaims(raw, claims, s.keyFor)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeExpiredToken, "credential expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidToken, "invalid credential")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidToken, "credential is missing subject or id")
	}
	if claims.Kind != want {
		return nil, dErrors.New(dErrors.CodeWrongCredentialKind, "credential kind not accepted here")
	}
	return claims, nil
}

// keyFor picks the verification key from the kind claim. The parser has
// already decoded the claims when it calls this.
func (s *Service) keyFor(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	switch claims.Kind {
	case KindAccess:
		return s.accessKey, nil
	case KindRefresh:
		return s.refreshKey, nil
	default:
		return nil, jwt.ErrTokenUnverifiable
	}
}

// Rotate exchanges a refresh credential for a new pair. The subject must
// still exist and be active, the credential's epoch must not predate the
// subject's current epoch, and with reuse detection each refresh credential
// works once.
func (s *Service) Rotate(ctx context.Context, refreshToken string) (*CredentialPair, error) {
	if s.subjects == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "rotation is not configured")
	}
	claims, err := s.parse(ctx, refreshToken, KindRefresh)
	if err != nil {
		s.observeRotation("invalid")
		return nil, err
	}

	state, err := s.subjects.TokenState(ctx, claims.Subject)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeSubjectNotFound) {
			s.observeRotation("invalid")
			return nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	if !state.Active {
		s.observeRotation("invalid")
		return nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
	}
	if claims.Epoch < state.TokenEpoch {
		s.observeRotation("revoked")
		return nil, dErrors.New(dErrors.CodeInvalidToken, "credential revoked")
	}

	if s.reuseDetection && s.consumed != nil {
		if err := s.consume(ctx, claims); err != nil {
			return nil, err
		}
	}

	pair, err := s.Issue(ctx, claims.Subject, state.Role, WithEpoch(state.TokenEpoch))
	if err != nil {
		return nil, err
	}
	s.observeRotation("success")
	return pair, nil
}

func (s *Service) consume(ctx context.Context, claims *Claims) error {
	ttl := claims.ExpiresAt.Sub(requesttime.Now(ctx))
	if ttl < time.Second {
		ttl = time.Second
	}
	first, err := s.consumed.SetIfAbsent(ctx, consumedKeyPrefix+claims.ID, []byte(claims.Subject), ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "refresh reuse check failed", "error", err)
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "refresh reuse check unavailable")
	}
	if !first {
		s.observeRotation("reused")
		s.logger.WarnContext(ctx, "refresh credential reuse detected", "jti", claims.ID)
		meta := map[string]string{"jti": claims.ID, "family_revoked": "true"}
		// Whoever rotated first holds a valid pair; revoke every credential
		// of the subject so neither party keeps access.
		epoch, err := s.subjects.RevokeAll(ctx, claims.Subject)
		if err != nil {
			meta["family_revoked"] = "false"
			s.logger.ErrorContext(ctx, "failed to revoke credentials after reuse", "error", err)
		} else {
			meta["token_epoch"] = strconv.FormatInt(epoch, 10)
		}
		if s.audit != nil {
			s.audit.Security(ctx, audit.Event{
				Action:    audit.ActionRefreshReused,
				SubjectID: claims.Subject,
				Metadata:  meta,
			})
		}
		return dErrors.New(dErrors.CodeInvalidToken, "refresh credential already used")
	}
	return nil
}

func (s *Service) observeRotation(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRotation(outcome)
	}
}
