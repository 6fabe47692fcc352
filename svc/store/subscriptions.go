package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/pg"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
)

// SubscriptionStore persists subscriptions in the subscriptions table.
type SubscriptionStore struct {
	db DB
}

func NewSubscriptionStore(db DB) *SubscriptionStore {
	if db == nil {
		panic(ErrNilDependency)
	}
	return &SubscriptionStore{db: db}
}

const selectSubscription = `
	SELECT subscriber_id, tier, monthly_limit, used_this_month, expires_at, created_at, updated_at
	FROM subscriptions
	WHERE subscriber_id = $1`

func (s *SubscriptionStore) Get(ctx context.Context, subscriberID uuid.UUID) (*subscription.Subscription, error) {
	var (
		sub  subscription.Subscription
		tier string
	)
	err := s.db.QueryRow(ctx, selectSubscription, subscriberID).Scan(
		&sub.SubscriberID,
		&tier,
		&sub.MonthlyLimit,
		&sub.UsedThisMonth,
		&sub.ExpiresAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if sub.Tier, err = subscription.ParseTier(tier); err != nil {
		return nil, fmt.Errorf("%w: subscription %s: %w", ErrInvalidRecord, subscriberID, err)
	}
	return &sub, nil
}

const upsertSubscription = `
	INSERT INTO subscriptions (subscriber_id, tier, monthly_limit, used_this_month, expires_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (subscriber_id) DO UPDATE SET
		tier = EXCLUDED.tier,
		monthly_limit = EXCLUDED.monthly_limit,
		used_this_month = EXCLUDED.used_this_month,
		expires_at = EXCLUDED.expires_at,
		updated_at = EXCLUDED.updated_at`

func (s *SubscriptionStore) Save(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil || sub.SubscriberID == uuid.Nil {
		return fmt.Errorf("%w: subscriber id is required", subscription.ErrInvalidSubscription)
	}

	_, err := s.db.Exec(ctx, upsertSubscription,
		sub.SubscriberID,
		string(sub.Tier),
		sub.MonthlyLimit,
		sub.UsedThisMonth,
		sub.ExpiresAt.UTC(),
		sub.CreatedAt.UTC(),
		sub.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}
