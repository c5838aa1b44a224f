//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/suite"

	audit "inkwell/pkg/platform/audit"
	"inkwell/pkg/platform/audit/store/postgres"
	"inkwell/pkg/testutil/containers"
)

// PostgresAuditStoreSuite runs the store against a real PostgreSQL with the
// service migrations applied.
//
// Justification: ordering, jsonb round-tripping and the retention delete
// depend on PostgreSQL semantics sqlmock cannot reproduce.
type PostgresAuditStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresAuditStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresAuditStoreSuite))
}

func (s *PostgresAuditStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *PostgresAuditStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "audit_events"))
}

func (s *PostgresAuditStoreSuite) append(e audit.Event) audit.Event {
	e.ID = ulid.Make().String()
	s.Require().NoError(s.store.Append(context.Background(), e))
	return e
}

func (s *PostgresAuditStoreSuite) TestRoundTripNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := s.append(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated,
		SubjectID: "s-1", Resource: "book", ResourceID: "b-1", CreatedAt: base.Add(-time.Minute)})
	newer := s.append(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated,
		SubjectID: "s-1", Resource: "book", ResourceID: "b-2", Metadata: map[string]string{"title": "Dune"}, CreatedAt: base})

	events, err := s.store.ListBySubject(ctx, "s-1", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(newer.ID, events[0].ID)
	s.Equal(older.ID, events[1].ID)
	s.Equal("Dune", events[0].Metadata["title"])
	s.True(base.Equal(events[0].CreatedAt))
}

func (s *PostgresAuditStoreSuite) TestSecuritySinceAndPrune() {
	ctx := context.Background()
	now := time.Now().UTC()

	s.append(audit.Event{Category: audit.CategorySecurity, Action: audit.ActionIPBlocked, CreatedAt: now.Add(-100 * 24 * time.Hour)})
	s.append(audit.Event{Category: audit.CategorySecurity, Action: audit.ActionBlockedRequest, CreatedAt: now})
	s.append(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated, CreatedAt: now})

	events, err := s.store.ListSecuritySince(ctx, now.Add(-24*time.Hour), 100)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionBlockedRequest, events[0].Action)

	removed, err := s.store.DeleteBefore(ctx, now.Add(-90*24*time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, removed)
}

func (s *PostgresAuditStoreSuite) TestAppendIsIdempotentOnID() {
	e := audit.Event{ID: ulid.Make().String(), Category: audit.CategoryDomain, Action: "x", SubjectID: "s", CreatedAt: time.Now()}
	s.Require().NoError(s.store.Append(context.Background(), e))
	s.Require().NoError(s.store.Append(context.Background(), e))

	events, err := s.store.ListBySubject(context.Background(), "s", 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}
