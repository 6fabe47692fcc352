package senders

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// SettingsStore holds per-subscriber provider credentials, one key/value map
// per channel.
type SettingsStore interface {
	// GetSettings returns ErrSettingsNotFound when the subscriber has not
	// configured the channel.
	GetSettings(ctx context.Context, subscriberID uuid.UUID, ch notifications.Channel) (map[string]string, error)
	SaveSettings(ctx context.Context, subscriberID uuid.UUID, ch notifications.Channel, settings map[string]string) error
}

type settingsKey struct {
	subscriberID uuid.UUID
	channel      notifications.Channel
}

// MemorySettingsStore is an in-memory SettingsStore.
type MemorySettingsStore struct {
	mu   sync.RWMutex
	data map[settingsKey]map[string]string
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{data: make(map[settingsKey]map[string]string)}
}

func (s *MemorySettingsStore) GetSettings(_ context.Context, subscriberID uuid.UUID, ch notifications.Channel) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[settingsKey{subscriberID, ch}]
	if !ok {
		return nil, ErrSettingsNotFound
	}
	return maps.Clone(v), nil
}

func (s *MemorySettingsStore) SaveSettings(_ context.Context, subscriberID uuid.UUID, ch notifications.Channel, settings map[string]string) error {
	if !notifications.IsSupportedChannel(ch) {
		return notifications.ErrUnknownChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[settingsKey{subscriberID, ch}] = maps.Clone(settings)
	return nil
}
