package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Status is the delivery outcome recorded for a dispatch attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Log is an immutable audit record written once per dispatch attempt.
type Log struct {
	ID           uuid.UUID `json:"id"`
	SubscriberID uuid.UUID `json:"subscriber_id"`
	Recipient    string    `json:"recipient"`
	Channel      Channel   `json:"channel"`
	EventType    EventType `json:"event_type"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Rendered carries the output of template rendering into a log entry.
type Rendered struct {
	Subject string
	Body    string
}

// NewSuccessLog records a delivered notification.
func NewSuccessLog(cmd Command, rendered Rendered, at time.Time) Log {
	return newLog(cmd, rendered, StatusSuccess, "", at)
}

// NewFailedLog records a dispatch attempt that did not deliver. rendered may be
// empty when the failure happened before rendering.
func NewFailedLog(cmd Command, rendered Rendered, cause error, at time.Time) Log {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	return newLog(cmd, rendered, StatusFailed, reason, at)
}

func newLog(cmd Command, rendered Rendered, status Status, reason string, at time.Time) Log {
	return Log{
		ID:           uuid.New(),
		SubscriberID: cmd.SubscriberID,
		Recipient:    cmd.Recipient,
		Channel:      cmd.Channel,
		EventType:    cmd.EventType,
		Subject:      rendered.Subject,
		Body:         rendered.Body,
		Status:       status,
		Error:        reason,
		CreatedAt:    at.UTC(),
	}
}

func (l Log) Succeeded() bool {
	return l.Status == StatusSuccess
}
