package notifications

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Template is a parameterized subject/body pair bound to one event and channel.
// A template with a nil SubscriberID is the global default; otherwise it is a
// custom override owned by that subscriber.
type Template struct {
	ID           uuid.UUID  `json:"id"`
	SubscriberID *uuid.UUID `json:"subscriber_id,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	EventType    EventType  `json:"event_type"`
	Channel      Channel    `json:"channel"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TemplateContent holds the editable part of a template.
type TemplateContent struct {
	Name        string
	Description string
	Subject     string
	Body        string
}

func (c TemplateContent) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyTemplateName
	}
	if strings.TrimSpace(c.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(c.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// NewGlobalTemplate creates the system default template for an event and channel.
func NewGlobalTemplate(event EventType, channel Channel, content TemplateContent) (*Template, error) {
	return newTemplate(nil, event, channel, content)
}

// NewCustomTemplate creates a subscriber-owned override.
func NewCustomTemplate(subscriberID uuid.UUID, event EventType, channel Channel, content TemplateContent) (*Template, error) {
	if subscriberID == uuid.Nil {
		return nil, ErrTemplateOwnerMismatch
	}
	return newTemplate(&subscriberID, event, channel, content)
}

func newTemplate(owner *uuid.UUID, event EventType, channel Channel, content TemplateContent) (*Template, error) {
	if !IsSupportedEventType(event) {
		return nil, ErrUnknownEventType
	}
	if !IsSupportedChannel(channel) {
		return nil, ErrUnknownChannel
	}
	if err := content.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Template{
		ID:           uuid.New(),
		SubscriberID: owner,
		Name:         content.Name,
		Description:  content.Description,
		EventType:    event,
		Channel:      channel,
		Subject:      content.Subject,
		Body:         content.Body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update replaces the editable content. Event, channel and owner are fixed.
func (t *Template) Update(content TemplateContent) error {
	if err := content.validate(); err != nil {
		return err
	}
	t.Name = content.Name
	t.Description = content.Description
	t.Subject = content.Subject
	t.Body = content.Body
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *Template) IsCustom() bool {
	return t.SubscriberID != nil
}

func (t *Template) IsGlobal() bool {
	return t.SubscriberID == nil
}

// OwnedBy reports whether the template is a custom override of the subscriber.
func (t *Template) OwnedBy(subscriberID uuid.UUID) bool {
	return t.SubscriberID != nil && *t.SubscriberID == subscriberID
}
