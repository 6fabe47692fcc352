package senders

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Email hands rendered HTML to an email.EmailSender.
type Email struct {
	mailer email.EmailSender
}

// NewEmail panics if mailer is nil.
func NewEmail(mailer email.EmailSender) *Email {
	if mailer == nil {
		panic("senders: email sender cannot be nil")
	}
	return &Email{mailer: mailer}
}

func (e *Email) Channel() notifications.Channel { return notifications.ChannelEmail }

func (e *Email) Send(ctx context.Context, msg Message) error {
	err := e.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   msg.Recipient,
		Subject:  msg.Subject,
		BodyHTML: msg.Body,
		Tag:      msg.EventType.String(),
	})
	if err != nil {
		return sendFailed(notifications.ChannelEmail, err)
	}
	return nil
}
