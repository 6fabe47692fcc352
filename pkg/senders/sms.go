package senders

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// SMS records outgoing text messages in the structured log. No gateway is
// wired; the log line is the delivery.
type SMS struct {
	logger *slog.Logger
}

func NewSMS(log *slog.Logger) *SMS {
	if log == nil {
		log = slog.Default()
	}
	return &SMS{logger: log.With(logger.Component("sms"))}
}

func (s *SMS) Channel() notifications.Channel { return notifications.ChannelSMS }

func (s *SMS) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "sms sent",
		logger.SubscriberID(msg.SubscriberID),
		logger.EventType(msg.EventType.String()),
		slog.String("to", msg.Recipient),
		slog.String("text", msg.Text()),
	)
	return nil
}
