package senders

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// discordContentLimit is Discord's maximum message length.
const discordContentLimit = 2000

// Discord posts to an incoming webhook. Settings: webhook_url.
type Discord struct {
	opts httpOptions
}

func NewDiscord(opts ...HTTPOption) *Discord {
	return &Discord{opts: newHTTPOptions("", opts)}
}

func (d *Discord) Channel() notifications.Channel { return notifications.ChannelDiscord }

func (d *Discord) Send(ctx context.Context, msg Message) error {
	s, err := msg.settings(d.Channel(), "webhook_url")
	if err != nil {
		return err
	}
	return d.opts.postJSON(ctx, d.Channel(), s[0], map[string]any{
		"content": truncateRunes(msg.Text(), discordContentLimit),
	}, nil)
}

// Slack posts to an incoming webhook. Settings: webhook_url.
type Slack struct {
	opts httpOptions
}

func NewSlack(opts ...HTTPOption) *Slack {
	return &Slack{opts: newHTTPOptions("", opts)}
}

func (s *Slack) Channel() notifications.Channel { return notifications.ChannelSlack }

func (s *Slack) Send(ctx context.Context, msg Message) error {
	set, err := msg.settings(s.Channel(), "webhook_url")
	if err != nil {
		return err
	}
	return s.opts.postJSON(ctx, s.Channel(), set[0], map[string]any{
		"text": msg.Text(),
	}, nil)
}

// MSTeams posts a MessageCard to an incoming webhook. Settings: webhook_url.
type MSTeams struct {
	opts httpOptions
}

func NewMSTeams(opts ...HTTPOption) *MSTeams {
	return &MSTeams{opts: newHTTPOptions("", opts)}
}

func (m *MSTeams) Channel() notifications.Channel { return notifications.ChannelMSTeams }

func (m *MSTeams) Send(ctx context.Context, msg Message) error {
	s, err := msg.settings(m.Channel(), "webhook_url")
	if err != nil {
		return err
	}
	return m.opts.postJSON(ctx, m.Channel(), s[0], map[string]any{
		"@type":    "MessageCard",
		"@context": "https://schema.org/extensions",
		"summary":  msg.Subject,
		"title":    msg.Subject,
		"text":     msg.Body,
	}, nil)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
