// Package reputation keeps the shared blocklist and the per-address
// violation counts that feed auto-blocking.
package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"inkwell/internal/ratelimit/models"
	"inkwell/internal/sharedstore"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/platform/privacy"
	"inkwell/pkg/platform/tracer"
	"inkwell/pkg/platform/validation"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store is the subset of the shared store reputation uses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SlideWindow(ctx context.Context, key string, window time.Duration, member string, capacity int) (*sharedstore.WindowState, error)
}

// Service manages blocks and violation counts.
type Service struct {
	store   Store
	audit   *audit.Logger
	logger  *slog.Logger
	tracer  tracer.Tracer
	timeout time.Duration
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

// WithAudit records ip_blocked and ip_unblocked events.
func WithAudit(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

// WithTracer emits spans for block lookups and violation counts.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithStoreTimeout bounds each store call. Default 250ms.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a reputation service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("reputation store is required")
	}
	s := &Service{
		store:   store,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		timeout: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type blockOptions struct {
	source Source
	actor  string
}

// BlockOption annotates a block with its origin.
type BlockOption func(*blockOptions)

// WithSource tags the block (manual, auto_block, malicious_input).
func WithSource(src Source) BlockOption {
	return func(o *blockOptions) {
		o.source = src
	}
}

// WithActor records who placed the block.
func WithActor(actor string) BlockOption {
	return func(o *blockOptions) {
		o.actor = actor
	}
}

// Block stores a block for identifier lasting duration and emits ip_blocked.
// Blocking an already blocked identifier replaces the entry.
func (s *Service) Block(ctx context.Context, identifier string, duration time.Duration, reason string, opts ...BlockOption) (*BlockEntry, error) {
	if err := checkIdentifier(identifier); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "block duration must be positive")
	}
	if err := validation.CheckStringLength("reason", reason, validation.MaxReasonLength); err != nil {
		return nil, err
	}
	o := blockOptions{source: SourceManual}
	for _, opt := range opts {
		opt(&o)
	}

	now := requesttime.Now(ctx)
	entry := &BlockEntry{
		Identifier: identifier,
		Reason:     reason,
		Source:     o.source,
		Actor:      o.actor,
		CreatedAt:  now,
		ExpiresAt:  now.Add(duration),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode block entry")
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Set(storeCtx, models.BlockKey(identifier), payload, duration); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to store block")
	}

	if s.audit != nil {
		meta := map[string]string{
			"identifier": identifier,
			"reason":     reason,
			"source":     string(o.source),
			"duration":   duration.String(),
			"expires_at": entry.ExpiresAt.UTC().Format(time.RFC3339),
		}
		if o.actor != "" {
			meta["actor"] = o.actor
		}
		s.audit.Security(ctx, audit.Event{
			Action:        audit.ActionIPBlocked,
			SourceAddress: identifier,
			Resource:      "block",
			ResourceID:    identifier,
			Metadata:      meta,
		})
	}
	return entry, nil
}

// Get returns the active block for identifier, or CodeNotFound.
func (s *Service) Get(ctx context.Context, identifier string) (*BlockEntry, error) {
	if err := checkIdentifier(identifier); err != nil {
		return nil, err
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	raw, found, err := s.store.Get(storeCtx, models.BlockKey(identifier))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to read block")
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, "identifier is not blocked")
	}
	var entry BlockEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.ErrorContext(ctx, "corrupt block entry, treating as blocked",
			"identifier_prefix", privacy.AnonymizeIP(identifier),
			"error", err,
		)
		return &BlockEntry{Identifier: identifier, Reason: "unreadable entry", ExpiresAt: requesttime.Now(ctx).Add(time.Minute)}, nil
	}
	if !entry.Active(requesttime.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "identifier is not blocked")
	}
	return &entry, nil
}

// IsBlocked reports whether identifier is currently blocked. Store
// failures are returned so the caller can choose to fail open.
func (s *Service) IsBlocked(ctx context.Context, identifier string) (blocked bool, err error) {
	if identifier == "" {
		return false, nil
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanReputationCheck,
		tracer.String(tracer.AttrSourcePrefix, privacy.AnonymizeIP(identifier)),
	)
	defer func() {
		span.SetAttributes(tracer.Bool(tracer.AttrBlocked, blocked))
		span.End(err)
	}()

	_, err = s.Get(ctx, identifier)
	switch {
	case err == nil:
		return true, nil
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Unblock removes any block for identifier. It is idempotent and always
// emits ip_unblocked.
func (s *Service) Unblock(ctx context.Context, identifier string, opts ...BlockOption) error {
	if err := checkIdentifier(identifier); err != nil {
		return err
	}
	o := blockOptions{source: SourceManual}
	for _, opt := range opts {
		opt(&o)
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Delete(storeCtx, models.BlockKey(identifier)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to remove block")
	}
	if s.audit != nil {
		meta := map[string]string{"identifier": identifier}
		if o.actor != "" {
			meta["actor"] = o.actor
		}
		s.audit.Security(ctx, audit.Event{
			Action:        audit.ActionIPUnblocked,
			SourceAddress: identifier,
			Resource:      "block",
			ResourceID:    identifier,
			Metadata:      meta,
		})
	}
	return nil
}

// RecordViolation adds one violation for identifier and returns how many
// fall inside the trailing lookback window, this one included.
func (s *Service) RecordViolation(ctx context.Context, identifier string, lookback time.Duration) (int, error) {
	if err := checkIdentifier(identifier); err != nil {
		return 0, err
	}
	if lookback <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "lookback must be positive")
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanReputationViolate,
		tracer.String(tracer.AttrSourcePrefix, privacy.AnonymizeIP(identifier)),
	)
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	state, err := s.store.SlideWindow(storeCtx, models.ViolationKey(identifier), lookback, ulid.Make().String(), 0)
	if err != nil {
		span.End(err)
		return 0, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to record violation")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrViolations, state.Count))
	span.End(nil)
	return int(state.Count), nil
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func checkIdentifier(identifier string) error {
	if identifier == "" {
		return dErrors.New(dErrors.CodeValidation, "identifier is required")
	}
	if len(identifier) > validation.MaxIdentifierLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("identifier exceeds max length of %d", validation.MaxIdentifierLength))
	}
	return nil
}
