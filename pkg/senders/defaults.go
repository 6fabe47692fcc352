package senders

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/email"
)

// NewDefaultRegistry builds a registry covering every channel: console and
// SMS harness senders, email through mailer, and the HTTP providers sharing
// opts.
func NewDefaultRegistry(mailer email.EmailSender, console io.Writer, log *slog.Logger, opts ...HTTPOption) (*Registry, error) {
	r, err := NewRegistry(
		NewEmail(mailer),
		NewSMS(log),
		NewConsole(console),
		NewTelegram(opts...),
		NewDiscord(opts...),
		NewWhatsApp(opts...),
		NewSlack(opts...),
		NewMSTeams(opts...),
		NewWebPush(opts...),
		NewFirebase(nil, opts...),
		NewSignal(opts...),
	)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
