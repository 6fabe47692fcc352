package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// TemplateStore persists global and custom templates in the templates table.
// Global templates have a NULL subscriber_id.
type TemplateStore struct {
	db DB
}

func NewTemplateStore(db DB) *TemplateStore {
	if db == nil {
		panic(ErrNilDependency)
	}
	return &TemplateStore{db: db}
}

const selectTemplate = `
	SELECT id, subscriber_id, name, description, event_type, channel, subject, body, created_at, updated_at
	FROM templates`

func (s *TemplateStore) GetCustom(ctx context.Context, event notifications.EventType, channel notifications.Channel, subscriberID uuid.UUID) (*notifications.Template, error) {
	if subscriberID == uuid.Nil {
		return nil, notifications.ErrTemplateNotFound
	}
	return s.getOne(ctx,
		selectTemplate+` WHERE subscriber_id = $1 AND event_type = $2 AND channel = $3`,
		subscriberID, event.String(), channel.String(),
	)
}

func (s *TemplateStore) GetGlobal(ctx context.Context, event notifications.EventType, channel notifications.Channel) (*notifications.Template, error) {
	return s.getOne(ctx,
		selectTemplate+` WHERE subscriber_id IS NULL AND event_type = $1 AND channel = $2`,
		event.String(), channel.String(),
	)
}

func (s *TemplateStore) getOne(ctx context.Context, query string, args ...any) (*notifications.Template, error) {
	var (
		tpl          notifications.Template
		event, chann string
	)
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&tpl.ID,
		&tpl.SubscriberID,
		&tpl.Name,
		&tpl.Description,
		&event,
		&chann,
		&tpl.Subject,
		&tpl.Body,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, notifications.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	if tpl.EventType, err = notifications.ParseEventType(event); err != nil {
		return nil, fmt.Errorf("%w: template %s: %w", ErrInvalidRecord, tpl.ID, err)
	}
	if tpl.Channel, err = notifications.ParseChannel(chann); err != nil {
		return nil, fmt.Errorf("%w: template %s: %w", ErrInvalidRecord, tpl.ID, err)
	}
	return &tpl, nil
}

const insertTemplate = `
	INSERT INTO templates (id, subscriber_id, name, description, event_type, channel, subject, body, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *TemplateStore) Add(ctx context.Context, tpl *notifications.Template) error {
	if tpl == nil {
		return errors.New("template cannot be nil")
	}

	_, err := s.db.Exec(ctx, insertTemplate,
		tpl.ID,
		tpl.SubscriberID,
		tpl.Name,
		tpl.Description,
		tpl.EventType.String(),
		tpl.Channel.String(),
		tpl.Subject,
		tpl.Body,
		tpl.CreatedAt.UTC(),
		tpl.UpdatedAt.UTC(),
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return notifications.ErrTemplateAlreadyExists
		}
		return fmt.Errorf("failed to add template: %w", err)
	}
	return nil
}

const updateTemplate = `
	UPDATE templates SET name = $2, description = $3, subject = $4, body = $5, updated_at = $6
	WHERE id = $1
		AND subscriber_id IS NOT DISTINCT FROM $7
		AND event_type = $8
		AND channel = $9`

// Update overwrites content fields only. The owner, event and channel of a
// stored template never change; a mismatch yields ErrTemplateOwnerMismatch.
func (s *TemplateStore) Update(ctx context.Context, tpl *notifications.Template) error {
	if tpl == nil {
		return errors.New("template cannot be nil")
	}

	tag, err := s.db.Exec(ctx, updateTemplate,
		tpl.ID,
		tpl.Name,
		tpl.Description,
		tpl.Subject,
		tpl.Body,
		tpl.UpdatedAt.UTC(),
		tpl.SubscriberID,
		tpl.EventType.String(),
		tpl.Channel.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM templates WHERE id = $1)`, tpl.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if exists {
		return notifications.ErrTemplateOwnerMismatch
	}
	return notifications.ErrTemplateNotFound
}
