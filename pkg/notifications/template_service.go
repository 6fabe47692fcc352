package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// TemplateService covers the administrative template operations. The send path
// never uses it; delivery goes through Resolver only.
type TemplateService struct {
	store  TemplateStore
	logger *slog.Logger
}

// TemplateServiceOption configures a TemplateService.
type TemplateServiceOption func(*TemplateService)

// WithTemplateServiceLogger sets the logger for the TemplateService.
func WithTemplateServiceLogger(logger *slog.Logger) TemplateServiceOption {
	return func(s *TemplateService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTemplateService creates a new template service.
func NewTemplateService(store TemplateStore, opts ...TemplateServiceOption) *TemplateService {
	if store == nil {
		panic("notifications: TemplateStore is required")
	}

	s := &TemplateService{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGlobal stores a new system default template.
func (s *TemplateService) CreateGlobal(ctx context.Context, event EventType, channel Channel, content TemplateContent) (*Template, error) {
	tpl, err := NewGlobalTemplate(event, channel, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to store global template: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "global template created",
		slog.String("template_id", tpl.ID.String()),
		logger.EventType(event.String()),
		logger.Channel(channel.String()),
	)
	return tpl, nil
}

// CreateCustom stores a subscriber override for an event and channel.
func (s *TemplateService) CreateCustom(ctx context.Context, subscriberID uuid.UUID, event EventType, channel Channel, content TemplateContent) (*Template, error) {
	tpl, err := NewCustomTemplate(subscriberID, event, channel, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to store custom template: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "custom template created",
		slog.String("template_id", tpl.ID.String()),
		logger.SubscriberID(subscriberID),
		logger.EventType(event.String()),
		logger.Channel(channel.String()),
	)
	return tpl, nil
}

// UpdateCustom edits a subscriber's override. The subscriber must own it.
func (s *TemplateService) UpdateCustom(ctx context.Context, subscriberID uuid.UUID, event EventType, channel Channel, content TemplateContent) (*Template, error) {
	tpl, err := s.store.GetCustom(ctx, event, channel, subscriberID)
	if err != nil {
		return nil, err
	}
	if !tpl.OwnedBy(subscriberID) {
		return nil, ErrTemplateOwnerMismatch
	}
	return s.update(ctx, tpl, content)
}

// UpdateGlobal edits the system default for an event and channel.
func (s *TemplateService) UpdateGlobal(ctx context.Context, event EventType, channel Channel, content TemplateContent) (*Template, error) {
	tpl, err := s.store.GetGlobal(ctx, event, channel)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, tpl, content)
}

func (s *TemplateService) update(ctx context.Context, tpl *Template, content TemplateContent) (*Template, error) {
	if err := tpl.Update(content); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to update template %s: %w", tpl.ID, err)
	}
	return tpl, nil
}
