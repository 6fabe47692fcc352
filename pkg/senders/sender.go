package senders

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Sender delivers a rendered message over one channel. A nil error means the
// provider accepted the message; failures wrap ErrSendFailed.
type Sender interface {
	Channel() notifications.Channel
	Send(ctx context.Context, msg Message) error
}

// Message is a fully rendered notification plus the subscriber's provider
// settings for the target channel.
type Message struct {
	SubscriberID uuid.UUID
	Recipient    string
	EventType    notifications.EventType
	Subject      string
	Body         string
	Settings     map[string]string
}

// Text joins subject and body the way chat channels display them.
func (m Message) Text() string {
	switch {
	case m.Subject == "":
		return m.Body
	case m.Body == "":
		return m.Subject
	}
	return m.Subject + "\n\n" + m.Body
}

// settings returns the values for keys in order, failing on the first
// missing or blank one.
func (m Message) settings(ch notifications.Channel, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, key := range keys {
		v := strings.TrimSpace(m.Settings[key])
		if v == "" {
			return nil, sendFailed(ch, fmt.Errorf("%w: %q", ErrMissingSetting, key))
		}
		out[i] = v
	}
	return out, nil
}

func (m Message) clone() Message {
	m.Settings = maps.Clone(m.Settings)
	return m
}

func sendFailed(ch notifications.Channel, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSendFailed, ch, err)
}
