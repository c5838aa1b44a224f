// Package storetest holds the behavioural contract every audit.Store
// backend must satisfy.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/suite"

	audit "inkwell/pkg/platform/audit"
)

// ContractSuite is run by each backend's tests. NewStore must return an
// empty store for every call.
type ContractSuite struct {
	suite.Suite
	NewStore func(t *testing.T) audit.Store

	store audit.Store
	base  time.Time
}

func (s *ContractSuite) SetupTest() {
	s.store = s.NewStore(s.T())
	s.base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ContractSuite) add(e audit.Event) audit.Event {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	s.Require().NoError(s.store.Append(context.Background(), e))
	return e
}

func (s *ContractSuite) TestListBySubjectNewestFirstWithLimit() {
	for i := range 5 {
		s.add(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated,
			SubjectID: "s-1", CreatedAt: s.base.Add(time.Duration(i) * time.Minute)})
	}
	s.add(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated,
		SubjectID: "s-2", CreatedAt: s.base})

	events, err := s.store.ListBySubject(context.Background(), "s-1", 3)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.True(events[0].CreatedAt.Equal(s.base.Add(4 * time.Minute)))
	s.True(events[2].CreatedAt.Equal(s.base.Add(2 * time.Minute)))
	for _, e := range events {
		s.Equal("s-1", e.SubjectID)
	}
}

func (s *ContractSuite) TestListByResource() {
	want := s.add(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated,
		Resource: "book", ResourceID: "b-1", Metadata: map[string]string{"title": "Dune"}, CreatedAt: s.base})
	s.add(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated,
		Resource: "book", ResourceID: "b-2", CreatedAt: s.base})
	s.add(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionGenerationQueued,
		Resource: "generation", ResourceID: "b-1", CreatedAt: s.base})

	events, err := s.store.ListByResource(context.Background(), "book", "b-1", 100)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(want.ID, events[0].ID)
	s.Equal("Dune", events[0].Metadata["title"])
}

func (s *ContractSuite) TestListSecuritySinceFiltersCategoryAndTime() {
	s.add(audit.Event{Category: audit.CategorySecurity, Action: audit.ActionIPBlocked, CreatedAt: s.base.Add(-2 * time.Hour)})
	inside := s.add(audit.Event{Category: audit.CategorySecurity, Action: audit.ActionBlockedRequest,
		SourceAddress: "198.51.100.9", CreatedAt: s.base})
	s.add(audit.Event{Category: audit.CategoryDomain, Action: audit.ActionBookCreated, CreatedAt: s.base})

	events, err := s.store.ListSecuritySince(context.Background(), s.base.Add(-time.Hour), 100)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(inside.ID, events[0].ID)
	s.Equal("198.51.100.9", events[0].SourceAddress)
	s.Equal(audit.CategorySecurity, events[0].Category)
}

func (s *ContractSuite) TestSameTimestampOrdersByID() {
	first := s.add(audit.Event{Category: audit.CategorySecurity, Action: "a", CreatedAt: s.base})
	second := s.add(audit.Event{Category: audit.CategorySecurity, Action: "b", CreatedAt: s.base})

	events, err := s.store.ListSecuritySince(context.Background(), s.base, 100)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(second.ID, events[0].ID)
	s.Equal(first.ID, events[1].ID)
}

func (s *ContractSuite) TestDeleteBefore() {
	s.add(audit.Event{Category: audit.CategorySecurity, Action: "old", SubjectID: "s", CreatedAt: s.base.Add(-91 * 24 * time.Hour)})
	s.add(audit.Event{Category: audit.CategorySecurity, Action: "edge", SubjectID: "s", CreatedAt: s.base.Add(-90 * 24 * time.Hour)})
	s.add(audit.Event{Category: audit.CategorySecurity, Action: "new", SubjectID: "s", CreatedAt: s.base})

	removed, err := s.store.DeleteBefore(context.Background(), s.base.Add(-90*24*time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, removed)

	events, err := s.store.ListBySubject(context.Background(), "s", 100)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *ContractSuite) TestEmptyResultIsEmptySlice() {
	events, err := s.store.ListBySubject(context.Background(), "nobody", 10)
	s.Require().NoError(err)
	s.NotNil(events)
	s.Empty(events)
}
