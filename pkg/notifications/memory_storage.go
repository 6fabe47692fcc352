package notifications

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type templateKey struct {
	owner   uuid.UUID // uuid.Nil for global templates
	event   EventType
	channel Channel
}

func keyOf(tpl *Template) templateKey {
	k := templateKey{event: tpl.EventType, channel: tpl.Channel}
	if tpl.SubscriberID != nil {
		k.owner = *tpl.SubscriberID
	}
	return k
}

// MemoryTemplateStore is an in-memory implementation of TemplateStore.
// Suitable for development and testing.
type MemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[templateKey]Template
	byID      map[uuid.UUID]templateKey
}

// NewMemoryTemplateStore creates an empty in-memory template store.
func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{
		templates: make(map[templateKey]Template),
		byID:      make(map[uuid.UUID]templateKey),
	}
}

func (s *MemoryTemplateStore) GetCustom(ctx context.Context, event EventType, channel Channel, subscriberID uuid.UUID) (*Template, error) {
	if subscriberID == uuid.Nil {
		return nil, ErrTemplateNotFound
	}
	return s.get(templateKey{owner: subscriberID, event: event, channel: channel})
}

func (s *MemoryTemplateStore) GetGlobal(ctx context.Context, event EventType, channel Channel) (*Template, error) {
	return s.get(templateKey{event: event, channel: channel})
}

func (s *MemoryTemplateStore) get(k templateKey) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[k]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	// Return a copy to prevent external mutation of stored data
	return &tpl, nil
}

func (s *MemoryTemplateStore) Add(ctx context.Context, tpl *Template) error {
	if tpl == nil {
		return errors.New("template cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(tpl)
	if _, exists := s.templates[k]; exists {
		return ErrTemplateAlreadyExists
	}
	if _, exists := s.byID[tpl.ID]; exists {
		return ErrTemplateAlreadyExists
	}

	s.templates[k] = *tpl
	s.byID[tpl.ID] = k
	return nil
}

func (s *MemoryTemplateStore) Update(ctx context.Context, tpl *Template) error {
	if tpl == nil {
		return errors.New("template cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k, exists := s.byID[tpl.ID]
	if !exists {
		return ErrTemplateNotFound
	}
	if keyOf(tpl) != k {
		return ErrTemplateOwnerMismatch
	}

	s.templates[k] = *tpl
	return nil
}

// MemoryLogStore is an in-memory implementation of LogStore.
type MemoryLogStore struct {
	mu   sync.RWMutex
	logs map[uuid.UUID][]Log // subscriberID -> logs in insertion order
}

// NewMemoryLogStore creates an empty in-memory log store.
func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{
		logs: make(map[uuid.UUID][]Log),
	}
}

func (s *MemoryLogStore) Add(ctx context.Context, log Log) error {
	if log.ID == uuid.Nil {
		return errors.Join(ErrInvalidLog, errors.New("log ID is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[log.SubscriberID] = append(s.logs[log.SubscriberID], log)
	return nil
}

func (s *MemoryLogStore) List(ctx context.Context, subscriberID uuid.UUID, opts ListOptions) ([]Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Log
	for _, l := range s.logs[subscriberID] {
		if opts.Status != "" && l.Status != opts.Status {
			continue
		}
		if len(opts.Channels) > 0 && !slices.Contains(opts.Channels, l.Channel) {
			continue
		}
		if opts.Since != nil && l.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, l)
	}

	// Newest first; stable so same-timestamp entries keep reverse insertion order
	slices.Reverse(filtered)
	slices.SortStableFunc(filtered, func(a, b Log) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []Log{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	if filtered == nil {
		return []Log{}, nil
	}
	return filtered, nil
}

func (s *MemoryLogStore) CountByStatus(ctx context.Context, subscriberID uuid.UUID, since *time.Time) (map[Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[Status]int64{StatusSuccess: 0, StatusFailed: 0}
	for _, l := range s.logs[subscriberID] {
		if since != nil && l.CreatedAt.Before(*since) {
			continue
		}
		counts[l.Status]++
	}
	return counts, nil
}
