package notifications

import (
	"errors"
	"maps"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// MaxParameters bounds the number of placeholder values a single command may carry.
const MaxParameters = 64

// Command asks the dispatcher to deliver one notification. It is produced by the
// API layer and consumed exactly once from the queue.
type Command struct {
	SubscriberID uuid.UUID         `json:"subscriber_id"`
	Channel      Channel           `json:"channel"`
	Recipient    string            `json:"recipient"`
	EventType    EventType         `json:"event_type"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// NewCommand builds a validated command. The parameters map is copied so later
// mutations by the caller do not leak into the queued item.
func NewCommand(subscriberID uuid.UUID, channel Channel, recipient string, event EventType, params map[string]string) (Command, error) {
	cmd := Command{
		SubscriberID: subscriberID,
		Channel:      channel,
		Recipient:    recipient,
		EventType:    event,
		Parameters:   maps.Clone(params),
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// Validate checks the command is well-formed. It does not check plan permissions.
func (c Command) Validate() error {
	rules := []validator.Rule{
		validator.NonNilUUID("subscriber_id", c.SubscriberID),
		validator.RequiredString("recipient", c.Recipient),
		validator.MaxLenMap("parameters", c.Parameters, MaxParameters),
		knownChannel("channel", c.Channel),
		knownEventType("event_type", c.EventType),
	}
	if c.Channel == ChannelEmail {
		rules = append(rules, validator.ValidEmail("recipient", c.Recipient))
	}
	if c.Channel == ChannelSMS {
		rules = append(rules, validator.ValidPhone("recipient", c.Recipient))
	}

	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidCommand, err)
	}
	return nil
}

func knownChannel(field string, ch Channel) validator.Rule {
	return validator.Must(field, IsSupportedChannel(ch), "unknown notification channel")
}

func knownEventType(field string, e EventType) validator.Rule {
	return validator.Must(field, IsSupportedEventType(e), "unknown event type")
}
