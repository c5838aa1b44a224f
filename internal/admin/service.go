package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/reputation"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
	adminmw "inkwell/pkg/platform/middleware/admin"
	"inkwell/pkg/platform/middleware/requesttime"
	"inkwell/pkg/platform/validation"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// AuditQuerier reads the audit trail.
type AuditQuerier interface {
	SecurityEventsSince(ctx context.Context, since time.Time, limit int) ([]audit.Event, error)
	BySubject(ctx context.Context, subjectID string, limit int) ([]audit.Event, error)
	ByResource(ctx context.Context, resource, resourceID string, limit int) ([]audit.Event, error)
}

// Blocklist manages explicit blocks.
type Blocklist interface {
	Block(ctx context.Context, identifier string, duration time.Duration, reason string, opts ...reputation.BlockOption) (*reputation.BlockEntry, error)
	Get(ctx context.Context, identifier string) (*reputation.BlockEntry, error)
	Unblock(ctx context.Context, identifier string, opts ...reputation.BlockOption) error
}

// SubjectAdmin revokes credentials on behalf of an operator.
type SubjectAdmin interface {
	RevokeAll(ctx context.Context, subjectID string) (int64, error)
	Deactivate(ctx context.Context, subjectID string) (int64, error)
}

// DefaultSecurityWindow is the trailing window used when none is given.
const DefaultSecurityWindow = 24 * time.Hour

// Service provides operator-level reads of the audit trail and control of
// the blocklist.
type Service struct {
	audit    AuditQuerier
	blocks   Blocklist
	subjects SubjectAdmin
	events   *audit.Logger
}

// NewService creates an admin service. subjects may be nil, which disables
// the subject endpoints.
func NewService(auditQuerier AuditQuerier, blocks Blocklist, subjects SubjectAdmin, events *audit.Logger) (*Service, error) {
	if auditQuerier == nil {
		return nil, errors.New("audit querier is required")
	}
	if blocks == nil {
		return nil, errors.New("blocklist is required")
	}
	if events == nil {
		events = audit.NewLogger(nil, nil)
	}
	return &Service{audit: auditQuerier, blocks: blocks, subjects: subjects, events: events}, nil
}

// RecentSecurityEvents lists security events recorded within the trailing window.
func (s *Service) RecentSecurityEvents(ctx context.Context, window time.Duration, limit int) ([]audit.Event, error) {
	if window <= 0 {
		window = DefaultSecurityWindow
	}
	return s.audit.SecurityEventsSince(ctx, requesttime.Now(ctx).Add(-window), limit)
}

func (s *Service) SubjectEvents(ctx context.Context, subjectID string, limit int) ([]audit.Event, error) {
	if err := validation.CheckStringLength("subject id", subjectID, validation.MaxIdentifierLength); err != nil {
		return nil, err
	}
	return s.audit.BySubject(ctx, subjectID, limit)
}

func (s *Service) ResourceEvents(ctx context.Context, resource, resourceID string, limit int) ([]audit.Event, error) {
	if err := validation.CheckStringLength("resource", resource, validation.MaxResourceLength); err != nil {
		return nil, err
	}
	if err := validation.CheckStringLength("resource id", resourceID, validation.MaxIdentifierLength); err != nil {
		return nil, err
	}
	return s.audit.ByResource(ctx, resource, resourceID, limit)
}

// Block places a manual block attributed to the calling operator.
func (s *Service) Block(ctx context.Context, identifier string, duration time.Duration, reason string) (*reputation.BlockEntry, error) {
	if err := validation.CheckDuration("duration", duration, validation.MaxBlockDuration); err != nil {
		return nil, err
	}
	return s.blocks.Block(ctx, identifier, duration, reason,
		reputation.WithSource(reputation.SourceManual),
		reputation.WithActor(adminmw.ActorID(ctx)),
	)
}

func (s *Service) GetBlock(ctx context.Context, identifier string) (*reputation.BlockEntry, error) {
	return s.blocks.Get(ctx, identifier)
}

func (s *Service) Unblock(ctx context.Context, identifier string) error {
	return s.blocks.Unblock(ctx, identifier, reputation.WithActor(adminmw.ActorID(ctx)))
}

// RevokeSubject invalidates every refresh credential of subjectID and, when
// deactivate is set, disables the subject.
func (s *Service) RevokeSubject(ctx context.Context, subjectID string, deactivate bool) (int64, error) {
	if s.subjects == nil {
		return 0, dErrors.New(dErrors.CodeNotFound, "subject administration is not enabled")
	}
	subjectID = strings.TrimSpace(subjectID)
	var (
		epoch int64
		err   error
	)
	if deactivate {
		epoch, err = s.subjects.Deactivate(ctx, subjectID)
	} else {
		epoch, err = s.subjects.RevokeAll(ctx, subjectID)
	}
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeSubjectNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return 0, err
	}
	action := audit.ActionLogoutAll
	if deactivate {
		action = audit.ActionSubjectDeactivated
	}
	s.events.Security(ctx, audit.Event{
		Action:     action,
		SubjectID:  subjectID,
		Resource:   "subject",
		ResourceID: subjectID,
		Metadata:   map[string]string{"actor": adminmw.ActorID(ctx)},
	})
	return epoch, nil
}
