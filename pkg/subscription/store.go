package subscription

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SubscriptionStore defines the interface for subscription persistence.
// Each subscriber has exactly one subscription, so SubscriberID serves as the primary key.
type SubscriptionStore interface {
	// Get retrieves a subscription by subscriber ID.
	// Returns ErrSubscriptionNotFound if no subscription exists.
	Get(ctx context.Context, subscriberID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription.
	Save(ctx context.Context, subscription *Subscription) error
}

// MemoryStore is an in-memory SubscriptionStore for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]Subscription)}
}

func (s *MemoryStore) Get(_ context.Context, subscriberID uuid.UUID) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[subscriberID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (s *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	if sub == nil || sub.SubscriberID == uuid.Nil {
		return fmt.Errorf("%w: subscriber id is required", ErrInvalidSubscription)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.SubscriberID] = *sub
	return nil
}
