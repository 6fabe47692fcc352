package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/subscriber"
)

// SubscriberStore persists subscribers in the subscribers table.
type SubscriberStore struct {
	db DB
}

func NewSubscriberStore(db DB) *SubscriberStore {
	if db == nil {
		panic(ErrNilDependency)
	}
	return &SubscriberStore{db: db}
}

const selectSubscriber = `
	SELECT id, company_name, email, phone, password_hash, channels,
		refresh_token_hash, refresh_token_expires_at, refresh_token_revoked,
		created_at, updated_at
	FROM subscribers`

func (s *SubscriberStore) Get(ctx context.Context, id uuid.UUID) (*subscriber.Subscriber, error) {
	return s.getOne(ctx, selectSubscriber+` WHERE id = $1`, id)
}

func (s *SubscriberStore) GetByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	return s.getOne(ctx, selectSubscriber+` WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *SubscriberStore) getOne(ctx context.Context, query string, arg any) (*subscriber.Subscriber, error) {
	var (
		sub       subscriber.Subscriber
		channels  []string
		rtHash    *string
		rtExpires *time.Time
		rtRevoked bool
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&sub.ID,
		&sub.CompanyName,
		&sub.Email,
		&sub.Phone,
		&sub.PasswordHash,
		&channels,
		&rtHash,
		&rtExpires,
		&rtRevoked,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscriber.ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to load subscriber: %w", err)
	}

	sub.Channels = make([]notifications.Channel, 0, len(channels))
	for _, name := range channels {
		ch, err := notifications.ParseChannel(name)
		if err != nil {
			return nil, fmt.Errorf("%w: subscriber %s: %w", ErrInvalidRecord, sub.ID, err)
		}
		sub.Channels = append(sub.Channels, ch)
	}

	if rtHash != nil && rtExpires != nil {
		sub.RefreshToken = &subscriber.RefreshToken{
			Hash:      *rtHash,
			ExpiresAt: rtExpires.UTC(),
			Revoked:   rtRevoked,
		}
	}
	return &sub, nil
}

const upsertSubscriber = `
	INSERT INTO subscribers (id, company_name, email, phone, password_hash, channels,
		refresh_token_hash, refresh_token_expires_at, refresh_token_revoked,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		company_name = EXCLUDED.company_name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		password_hash = EXCLUDED.password_hash,
		channels = EXCLUDED.channels,
		refresh_token_hash = EXCLUDED.refresh_token_hash,
		refresh_token_expires_at = EXCLUDED.refresh_token_expires_at,
		refresh_token_revoked = EXCLUDED.refresh_token_revoked,
		updated_at = EXCLUDED.updated_at`

func (s *SubscriberStore) Save(ctx context.Context, sub *subscriber.Subscriber) error {
	if sub == nil || sub.ID == uuid.Nil {
		return fmt.Errorf("%w: subscriber id is required", subscriber.ErrInvalidSubscriber)
	}

	channels := make([]string, len(sub.Channels))
	for i, ch := range sub.Channels {
		channels[i] = ch.String()
	}

	var (
		rtHash    *string
		rtExpires *time.Time
		rtRevoked bool
	)
	if rt := sub.RefreshToken; rt != nil {
		hash, expires := rt.Hash, rt.ExpiresAt.UTC()
		rtHash, rtExpires, rtRevoked = &hash, &expires, rt.Revoked
	}

	_, err := s.db.Exec(ctx, upsertSubscriber,
		sub.ID,
		sub.CompanyName,
		strings.ToLower(strings.TrimSpace(sub.Email)),
		sub.Phone,
		sub.PasswordHash,
		channels,
		rtHash,
		rtExpires,
		rtRevoked,
		sub.CreatedAt.UTC(),
		sub.UpdatedAt.UTC(),
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return subscriber.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to save subscriber: %w", err)
	}
	return nil
}
