// Package seeder fills local stores with demo subjects, audit history and a
// sample block so the admin surface has something to show.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/reputation"
	"inkwell/internal/subject/models"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/audit"
)

// DemoPassword is the password of every seeded subject.
const DemoPassword = "inkwell-demo-password"

// SubjectStore defines methods for seeding subjects
type SubjectStore interface {
	Create(ctx context.Context, subject *models.Subject) error
}

// AuditStore defines methods for seeding audit events
type AuditStore interface {
	Append(ctx context.Context, event audit.Event) error
}

// Blocklist defines methods for seeding blocks
type Blocklist interface {
	Block(ctx context.Context, identifier string, duration time.Duration, reason string, opts ...reputation.BlockOption) (*reputation.BlockEntry, error)
}

// Seeder populates stores with demo data
type Seeder struct {
	subjects SubjectStore
	audit    AuditStore
	blocks   Blocklist
	logger   *slog.Logger
	now      func() time.Time
	cost     int
}

// New creates a new seeder. blocks may be nil.
func New(subjects SubjectStore, auditStore AuditStore, blocks Blocklist, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		subjects: subjects,
		audit:    auditStore,
		blocks:   blocks,
		logger:   logger,
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
}

// SeedAll populates all stores with demo data. Subjects that already exist
// are skipped, so seeding twice is harmless.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	subjects, err := s.seedSubjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	if err := s.seedAuditEvents(ctx, subjects); err != nil {
		return fmt.Errorf("failed to seed audit events: %w", err)
	}

	if s.blocks != nil {
		if _, err := s.blocks.Block(ctx, "203.0.113.66", 24*time.Hour, "demo: scripted signups",
			reputation.WithSource(reputation.SourceManual), reputation.WithActor("seeder")); err != nil {
			return fmt.Errorf("failed to seed block: %w", err)
		}
	}

	s.logger.Info("demo data seeded successfully",
		"subjects", len(subjects),
	)
	return nil
}

func (s *Seeder) seedSubjects(ctx context.Context) ([]*models.Subject, error) {
	demoSubjects := []struct {
		email string
		role  models.Role
	}{
		{"alice@inkwell.local", models.RoleAuthor},
		{"bob@inkwell.local", models.RoleAuthor},
		{"carol@inkwell.local", models.RoleEditor},
		{"root@inkwell.local", models.RoleAdmin},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), s.cost)
	if err != nil {
		return nil, err
	}

	var subjects []*models.Subject
	now := s.now()
	for _, d := range demoSubjects {
		subject := models.NewSubject(d.email, string(hash), d.role, now)
		if err := s.subjects.Create(ctx, subject); err != nil {
			if dErrors.HasCode(err, dErrors.CodeConflict) {
				s.logger.Info("demo subject already present", "email", d.email)
				continue
			}
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

func (s *Seeder) seedAuditEvents(ctx context.Context, subjects []*models.Subject) error {
	now := s.now()

	events := []struct {
		subjectIdx int
		category   audit.Category
		action     string
		resource   string
		offset     time.Duration
	}{
		{0, audit.CategoryDomain, audit.ActionSubjectRegistered, "subject", -3 * time.Hour},
		{0, audit.CategoryDomain, audit.ActionLoginSucceeded, "subject", -2 * time.Hour},
		{0, audit.CategoryDomain, audit.ActionBookCreated, "book", -110 * time.Minute},
		{0, audit.CategoryDomain, audit.ActionGenerationQueued, "generation", -100 * time.Minute},
		{1, audit.CategoryDomain, audit.ActionSubjectRegistered, "subject", -90 * time.Minute},
		{1, audit.CategorySecurity, audit.ActionLoginFailed, "", -80 * time.Minute},
		{1, audit.CategoryDomain, audit.ActionLoginSucceeded, "subject", -79 * time.Minute},
		{2, audit.CategoryDomain, audit.ActionBookCreated, "book", -30 * time.Minute},
		{2, audit.CategorySecurity, audit.ActionRefreshReused, "", -10 * time.Minute},
	}

	for _, e := range events {
		if e.subjectIdx >= len(subjects) {
			continue
		}
		subjectID := subjects[e.subjectIdx].ID.String()
		event := audit.Event{
			ID:            ulid.Make().String(),
			Category:      e.category,
			Action:        e.action,
			SubjectID:     subjectID,
			Resource:      e.resource,
			SourceAddress: "192.0.2.10",
			CreatedAt:     now.Add(e.offset),
		}
		switch e.resource {
		case "subject":
			event.ResourceID = subjectID
		case "book", "generation":
			event.ResourceID = ulid.Make().String()
		}
		if err := s.audit.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
