package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Resolver picks the template used on the send path.
// A subscriber's custom template always shadows the global default.
type Resolver struct {
	store TemplateStore
}

// NewResolver creates a resolver over the given store.
func NewResolver(store TemplateStore) *Resolver {
	if store == nil {
		panic("notifications: TemplateStore is required")
	}
	return &Resolver{store: store}
}

// Resolve returns the custom template for (event, channel, subscriber) if one
// exists, otherwise the global one. Returns ErrTemplateNotFound if neither exists.
func (r *Resolver) Resolve(ctx context.Context, event EventType, channel Channel, subscriberID uuid.UUID) (*Template, error) {
	tpl, err := r.store.GetCustom(ctx, event, channel, subscriberID)
	switch {
	case err == nil:
		return tpl, nil
	case !errors.Is(err, ErrTemplateNotFound):
		return nil, fmt.Errorf("failed to load custom template: %w", err)
	}

	tpl, err = r.store.GetGlobal(ctx, event, channel)
	switch {
	case err == nil:
		return tpl, nil
	case errors.Is(err, ErrTemplateNotFound):
		return nil, fmt.Errorf("%w: event=%s channel=%s", ErrTemplateNotFound, event, channel)
	default:
		return nil, fmt.Errorf("failed to load global template: %w", err)
	}
}
