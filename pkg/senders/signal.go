package senders

import (
	"context"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Signal sends through a signal-cli REST API instance.
// Settings: api_url, number (the registered sender number).
type Signal struct {
	opts httpOptions
}

func NewSignal(opts ...HTTPOption) *Signal {
	return &Signal{opts: newHTTPOptions("", opts)}
}

func (s *Signal) Channel() notifications.Channel { return notifications.ChannelSignal }

func (s *Signal) Send(ctx context.Context, msg Message) error {
	set, err := msg.settings(s.Channel(), "api_url", "number")
	if err != nil {
		return err
	}
	return s.opts.postJSON(ctx, s.Channel(), strings.TrimRight(set[0], "/")+"/v2/send", map[string]any{
		"message":    msg.Text(),
		"number":     set[1],
		"recipients": []string{msg.Recipient},
	}, nil)
}
