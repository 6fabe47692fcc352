package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/queue"
	"github.com/dmitrymomot/notifykit/pkg/subscriber"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
)

// TriggerRequest is a producer's request to notify one recipient of an event.
// Names are resolved against the registries.
type TriggerRequest struct {
	EventType  string            `json:"event_type"`
	Channel    string            `json:"channel"`
	Recipient  string            `json:"recipient"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Producer validates trigger requests and enqueues them for the dispatcher.
// Quota and expiry are left to the dispatcher, which sees the usage at send
// time.
type Producer struct {
	queue         *queue.Queue[notifications.Command]
	subscribers   subscriber.Store
	subscriptions subscription.SubscriptionStore
	catalog       *subscription.Catalog
	logger        *slog.Logger
}

type ProducerOption func(*Producer)

func WithProducerLogger(l *slog.Logger) ProducerOption {
	return func(p *Producer) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProducer panics if any dependency is nil.
func NewProducer(q *queue.Queue[notifications.Command], subscribers subscriber.Store, subscriptions subscription.SubscriptionStore, catalog *subscription.Catalog, opts ...ProducerOption) *Producer {
	switch {
	case q == nil:
		panic("dispatcher: queue cannot be nil")
	case subscribers == nil:
		panic("dispatcher: subscriber store cannot be nil")
	case subscriptions == nil:
		panic("dispatcher: subscription store cannot be nil")
	case catalog == nil:
		panic("dispatcher: plan catalog cannot be nil")
	}

	p := &Producer{
		queue:         q,
		subscribers:   subscribers,
		subscriptions: subscriptions,
		catalog:       catalog,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("producer"))
	return p
}

// Trigger resolves and validates req, checks the subscriber's plan covers the
// event and channel and that the channel is enabled, then enqueues. The
// returned command is what the dispatcher will process.
func (p *Producer) Trigger(ctx context.Context, subscriberID uuid.UUID, req TriggerRequest) (notifications.Command, error) {
	event, err := notifications.ParseEventType(req.EventType)
	if err != nil {
		return notifications.Command{}, errors.Join(ErrInvalidTrigger, err)
	}
	ch, err := notifications.ParseChannel(req.Channel)
	if err != nil {
		return notifications.Command{}, errors.Join(ErrInvalidTrigger, err)
	}

	cmd, err := notifications.NewCommand(subscriberID, ch, req.Recipient, event, req.Parameters)
	if err != nil {
		return notifications.Command{}, errors.Join(ErrInvalidTrigger, err)
	}

	sub, err := p.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return notifications.Command{}, err
	}
	plan, err := p.subscriptions.Get(ctx, subscriberID)
	if err != nil {
		return notifications.Command{}, err
	}

	if !p.catalog.IsEventAllowed(plan.Tier, event) {
		return notifications.Command{}, fmt.Errorf("%w: %s on %s plan", ErrEventNotAllowed, event, plan.Tier)
	}
	if !p.catalog.CanUseChannel(plan.Tier, ch) {
		return notifications.Command{}, fmt.Errorf("%w: %s on %s plan", ErrChannelNotAllowed, ch, plan.Tier)
	}
	if !sub.HasChannel(ch) {
		return notifications.Command{}, fmt.Errorf("%w: %s", ErrChannelNotEnabled, ch)
	}

	if err := p.queue.Enqueue(cmd); err != nil {
		return notifications.Command{}, err
	}

	p.logger.DebugContext(ctx, "notification queued",
		logger.SubscriberID(subscriberID),
		logger.Channel(ch.String()),
		logger.EventType(event.String()),
		logger.QueueDepth(p.queue.Len()))
	return cmd, nil
}
