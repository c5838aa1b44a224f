package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"inkwell/internal/subject/models"
	dErrors "inkwell/pkg/domain-errors"
)

// Error contract shared by every subject store:
// - CodeNotFound when the subject does not exist
// - CodeConflict when the email is already registered
// - wrapped infrastructure errors otherwise

// InMemoryStore keeps subjects in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Subject
	byEmail map[string]uuid.UUID
}

// NewInMemory constructs an empty in-memory subject store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]*models.Subject),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[subject.Email]; exists {
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	}
	cp := *subject
	s.byID[subject.ID] = &cp
	s.byEmail[subject.Email] = subject.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.byID[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	cp := *subject
	return &cp, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) IncrementEpoch(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.byID[id]
	if !ok {
		return 0, dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	subject.TokenEpoch++
	return subject.TokenEpoch, nil
}

func (s *InMemoryStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.byID[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	subject.Active = active
	return nil
}
