// Package memory keeps audit events in process memory for tests and
// single-node deployments.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	audit "inkwell/pkg/platform/audit"
)

// Store implements audit.Store in memory.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

// New creates an empty in-memory audit store.
func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	event.Metadata = maps.Clone(event.Metadata)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListBySubject(_ context.Context, subjectID string, limit int) ([]audit.Event, error) {
	return s.list(limit, func(e audit.Event) bool { return e.SubjectID == subjectID }), nil
}

func (s *Store) ListByResource(_ context.Context, resource, resourceID string, limit int) ([]audit.Event, error) {
	return s.list(limit, func(e audit.Event) bool {
		return e.Resource == resource && e.ResourceID == resourceID
	}), nil
}

func (s *Store) ListSecuritySince(_ context.Context, since time.Time, limit int) ([]audit.Event, error) {
	return s.list(limit, func(e audit.Event) bool {
		return e.Category == audit.CategorySecurity && !e.CreatedAt.Before(since)
	}), nil
}

func (s *Store) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e audit.Event) bool { return e.CreatedAt.Before(cutoff) })
	return int64(before - len(s.events)), nil
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) list(limit int, match func(audit.Event) bool) []audit.Event {
	s.mu.RLock()
	out := make([]audit.Event, 0)
	for _, e := range s.events {
		if match(e) {
			e.Metadata = maps.Clone(e.Metadata)
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b audit.Event) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
