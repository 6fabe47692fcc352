package subscriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
)

// Service registers subscribers and manages their channels against the plan
// of their subscription.
type Service struct {
	store   Store
	subs    subscription.SubscriptionStore
	catalog *subscription.Catalog
	logger  *slog.Logger
	now     func() time.Time
	opts    []Option
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the Service.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubscriberOptions passes construction options to New on Register.
func WithSubscriberOptions(opts ...Option) ServiceOption {
	return func(s *Service) {
		s.opts = append(s.opts, opts...)
	}
}

// WithServiceClock overrides the time source.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, subs subscription.SubscriptionStore, catalog *subscription.Catalog, opts ...ServiceOption) *Service {
	if store == nil {
		panic("subscriber: Store is required")
	}
	if subs == nil {
		panic("subscriber: SubscriptionStore is required")
	}
	if catalog == nil {
		panic("subscriber: Catalog is required")
	}

	s := &Service{
		store:   store,
		subs:    subs,
		catalog: catalog,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a subscriber together with a fresh subscription on tier.
func (s *Service) Register(ctx context.Context, p Params, tier subscription.Tier) (*Subscriber, *subscription.Subscription, error) {
	sub, err := New(p, append(slices.Clone(s.opts), WithClock(s.now))...)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.store.GetByEmail(ctx, sub.Email); err == nil {
		return nil, nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrSubscriberNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing subscriber: %w", err)
	}

	plan, err := s.catalog.NewSubscription(sub.ID, tier, s.now())
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, nil, fmt.Errorf("failed to save subscriber: %w", err)
	}
	if err := s.subs.Save(ctx, plan); err != nil {
		return nil, nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscriber registered",
		logger.SubscriberID(sub.ID),
		logger.Tier(tier.String()),
		logger.Component("subscriber"),
	)
	return sub, plan, nil
}

// EnableChannel activates a channel if the subscriber's current plan allows it.
func (s *Service) EnableChannel(ctx context.Context, id uuid.UUID, ch notifications.Channel) (*Subscriber, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := s.subs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := s.catalog.Plan(current.Tier)
	if err != nil {
		return nil, err
	}

	if err := sub.EnableChannel(ch, plan, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscriber: %w", err)
	}

	s.logger.InfoContext(ctx, "channel enabled",
		logger.SubscriberID(id),
		logger.Channel(ch.String()),
		logger.Component("subscriber"),
	)
	return sub, nil
}

// DisableChannel deactivates a channel.
func (s *Service) DisableChannel(ctx context.Context, id uuid.UUID, ch notifications.Channel) (*Subscriber, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.DisableChannel(ch, s.now())
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscriber: %w", err)
	}
	return sub, nil
}

// Authenticate checks credentials and issues a refresh token.
func (s *Service) Authenticate(ctx context.Context, email, password string, ttl time.Duration) (*Subscriber, string, error) {
	sub, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, ErrSubscriberNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !sub.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := sub.IssueRefreshToken(ttl, s.now())
	if err != nil {
		return nil, "", err
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, "", fmt.Errorf("failed to save subscriber: %w", err)
	}
	return sub, token, nil
}
