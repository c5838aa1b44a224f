// Package service owns subject registration, password login and the
// token-epoch bookkeeping behind logout-all.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/platform/metrics"
	"inkwell/internal/subject/models"
	"inkwell/internal/token"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/platform/privacy"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store persists subjects.
type Store interface {
	Create(ctx context.Context, subject *models.Subject) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	FindByEmail(ctx context.Context, email string) (*models.Subject, error)
	IncrementEpoch(ctx context.Context, id uuid.UUID) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// errInvalidCredentials is returned for every login failure so callers
// cannot tell an unknown email from a wrong password.
var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// hashPassword is swapped in tests to exercise hashing failures.
var hashPassword = bcrypt.GenerateFromPassword

const dummyPassword = "inkwell-dummy-password"

// Service implements the subject use cases.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	cost    int

	// dummyHash is compared against on unknown-email logins.
	dummyHash []byte
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

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// New creates a subject service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("subject store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	dummy, err := hashPassword([]byte(dummyPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("build dummy password hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates a new author with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*models.Subject, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	hash, err := hashPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	subject := models.NewSubject(email, string(hash), models.RoleAuthor, requesttime.Now(ctx))
	if err := s.store.Create(ctx, subject); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create subject")
	}
	if s.metrics != nil {
		s.metrics.IncrementSubjectsRegistered()
	}
	s.logger.InfoContext(ctx, "subject registered",
		"subject_id", subject.ID.String(),
		"email", privacy.MaskEmail(subject.Email),
	)
	return subject, nil
}

// Authenticate checks an email/password pair. Unknown emails still pay for
// one bcrypt comparison so response time does not reveal registration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Subject, error) {
	subject, err := s.store.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password)) //nolint:errcheck // timing equalisation only
		s.observeLogin("failure")
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(subject.PasswordHash), []byte(password)); err != nil {
		s.observeLogin("failure")
		return nil, errInvalidCredentials
	}
	if !subject.Active {
		s.observeLogin("failure")
		return nil, errInvalidCredentials
	}
	s.observeLogin("success")
	return subject, nil
}

// Get returns a subject by ID.
func (s *Service) Get(ctx context.Context, subjectID string) (*models.Subject, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
	}
	subject, err := s.store.FindByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	return subject, nil
}

// TokenState satisfies token.SubjectLookup.
func (s *Service) TokenState(ctx context.Context, subjectID string) (*token.SubjectState, error) {
	subject, err := s.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return &token.SubjectState{
		Role:       string(subject.Role),
		Active:     subject.Active,
		TokenEpoch: subject.TokenEpoch,
	}, nil
}

// RevokeAll bumps the subject's token epoch, invalidating every refresh
// credential issued before now. It returns the new epoch.
func (s *Service) RevokeAll(ctx context.Context, subjectID string) (int64, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
	}
	epoch, err := s.store.IncrementEpoch(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return 0, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credentials")
	}
	if s.metrics != nil {
		s.metrics.IncrementLogoutAll()
	}
	return epoch, nil
}

// Deactivate disables a subject and revokes its outstanding refresh
// credentials. It returns the new token epoch.
func (s *Service) Deactivate(ctx context.Context, subjectID string) (int64, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
	}
	if err := s.store.SetActive(ctx, id, false); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return 0, dErrors.New(dErrors.CodeSubjectNotFound, "subject not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate subject")
	}
	return s.RevokeAll(ctx, subjectID)
}

func (s *Service) observeLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementLoginAttempt(outcome)
	}
}
