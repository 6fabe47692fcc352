package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TemplateStore handles template persistence.
// Get methods return ErrTemplateNotFound when nothing matches.
type TemplateStore interface {
	// GetCustom returns the subscriber's override for an event and channel.
	GetCustom(ctx context.Context, event EventType, channel Channel, subscriberID uuid.UUID) (*Template, error)

	// GetGlobal returns the system default for an event and channel.
	GetGlobal(ctx context.Context, event EventType, channel Channel) (*Template, error)

	// Add stores a new template. Returns ErrTemplateAlreadyExists when a template
	// with the same owner, event and channel is present.
	Add(ctx context.Context, tpl *Template) error

	// Update overwrites an existing template identified by its ID.
	Update(ctx context.Context, tpl *Template) error
}

// LogStore persists dispatch logs and serves the statistics queries.
type LogStore interface {
	// Add appends a log entry.
	Add(ctx context.Context, log Log) error

	// List returns logs for a subscriber, newest first.
	List(ctx context.Context, subscriberID uuid.UUID, opts ListOptions) ([]Log, error)

	// CountByStatus returns the number of logs per status for a subscriber.
	CountByStatus(ctx context.Context, subscriberID uuid.UUID, since *time.Time) (map[Status]int64, error)
}

// ListOptions provides filtering and pagination options for listing logs.
type ListOptions struct {
	Limit    int        // Maximum number of logs to return (0 = no limit)
	Offset   int        // Number of logs to skip for pagination
	Status   Status     // If set, only logs with this status
	Channels []Channel  // If specified, only logs for these channels
	Since    *time.Time // If specified, only logs created after this time
}
