package subscriber

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store persists subscribers. Subscribers are never hard-deleted.
type Store interface {
	// Get returns ErrSubscriberNotFound if the subscriber does not exist.
	Get(ctx context.Context, id uuid.UUID) (*Subscriber, error)
	// GetByEmail looks up a subscriber by normalized email.
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
	// Save creates or updates a subscriber. Returns ErrEmailAlreadyExists when
	// another subscriber owns the email.
	Save(ctx context.Context, s *Subscriber) error
}

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]Subscriber
	byEmail map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]Subscriber),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		return nil, ErrSubscriberNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (*Subscriber, error) {
	m.mu.RLock()
	id, ok := m.byEmail[normalizeEmail(email)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSubscriberNotFound
	}
	return m.Get(ctx, id)
}

func (m *MemoryStore) Save(_ context.Context, s *Subscriber) error {
	if s == nil || s.ID == uuid.Nil {
		return fmt.Errorf("%w: subscriber id is required", ErrInvalidSubscriber)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(s.Email)
	if owner, taken := m.byEmail[email]; taken && owner != s.ID {
		return ErrEmailAlreadyExists
	}
	if prev, ok := m.byID[s.ID]; ok && prev.Email != email {
		delete(m.byEmail, prev.Email)
	}

	m.byID[s.ID] = *clone(*s)
	m.byEmail[email] = s.ID
	return nil
}

func clone(s Subscriber) *Subscriber {
	s.Channels = slices.Clone(s.Channels)
	s.PasswordHash = slices.Clone(s.PasswordHash)
	if s.RefreshToken != nil {
		rt := *s.RefreshToken
		s.RefreshToken = &rt
	}
	return &s
}
