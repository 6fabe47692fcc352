package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/secrets"
	"github.com/dmitrymomot/notifykit/pkg/senders"
)

const defaultSettingsPrefix = "notifykit:settings"

// SettingsStore keeps provider credentials in Redis. Each value is the JSON
// settings map sealed with a key derived for the subscriber and channel, so a
// value copied under another key fails to open.
type SettingsStore struct {
	client redis.UniversalClient
	cipher *secrets.Cipher
	prefix string
}

// SettingsOption configures SettingsStore.
type SettingsOption func(*SettingsStore)

// WithKeyPrefix replaces the default "notifykit:settings" key prefix.
func WithKeyPrefix(prefix string) SettingsOption {
	return func(s *SettingsStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewSettingsStore(client redis.UniversalClient, cipher *secrets.Cipher, opts ...SettingsOption) *SettingsStore {
	if client == nil || cipher == nil {
		panic(ErrNilDependency)
	}
	s := &SettingsStore{client: client, cipher: cipher, prefix: defaultSettingsPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SettingsStore) GetSettings(ctx context.Context, subscriberID uuid.UUID, ch notifications.Channel) (map[string]string, error) {
	sealed, err := s.client.Get(ctx, s.key(subscriberID, ch)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, senders.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load %s settings: %w", ch, err)
	}

	plain, err := s.cipher.OpenString(scope(subscriberID, ch), sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s settings: %w", ch, err)
	}

	var settings map[string]string
	if err := json.Unmarshal([]byte(plain), &settings); err != nil {
		return nil, errors.Join(ErrInvalidRecord, err)
	}
	return settings, nil
}

func (s *SettingsStore) SaveSettings(ctx context.Context, subscriberID uuid.UUID, ch notifications.Channel, settings map[string]string) error {
	if !notifications.IsSupportedChannel(ch) {
		return notifications.ErrUnknownChannel
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode %s settings: %w", ch, err)
	}
	sealed, err := s.cipher.SealString(scope(subscriberID, ch), string(raw))
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(subscriberID, ch), sealed, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s settings: %w", ch, err)
	}
	return nil
}

func (s *SettingsStore) key(subscriberID uuid.UUID, ch notifications.Channel) string {
	return s.prefix + ":" + subscriberID.String() + ":" + ch.String()
}

func scope(subscriberID uuid.UUID, ch notifications.Channel) []byte {
	return []byte(subscriberID.String() + "/" + ch.String())
}
