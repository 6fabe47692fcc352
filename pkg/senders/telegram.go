package senders

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Telegram sends through the Bot API. Settings: bot_token. The recipient is
// the chat id.
type Telegram struct {
	opts httpOptions
}

func NewTelegram(opts ...HTTPOption) *Telegram {
	return &Telegram{opts: newHTTPOptions("https://api.telegram.org", opts)}
}

func (t *Telegram) Channel() notifications.Channel { return notifications.ChannelTelegram }

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	s, err := msg.settings(t.Channel(), "bot_token")
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.opts.baseURL, s[0])
	return t.opts.postJSON(ctx, t.Channel(), endpoint, map[string]any{
		"chat_id": msg.Recipient,
		"text":    msg.Text(),
	}, nil)
}
