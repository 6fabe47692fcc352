package senders

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// WhatsApp sends text messages through the Meta Cloud API.
// Settings: access_token, phone_number_id. The recipient is the phone number.
type WhatsApp struct {
	opts httpOptions
}

func NewWhatsApp(opts ...HTTPOption) *WhatsApp {
	return &WhatsApp{opts: newHTTPOptions("https://graph.facebook.com/v20.0", opts)}
}

func (w *WhatsApp) Channel() notifications.Channel { return notifications.ChannelWhatsApp }

func (w *WhatsApp) Send(ctx context.Context, msg Message) error {
	s, err := msg.settings(w.Channel(), "access_token", "phone_number_id")
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", w.opts.baseURL, s[1])
	return w.opts.postJSON(ctx, w.Channel(), endpoint, map[string]any{
		"messaging_product": "whatsapp",
		"to":                msg.Recipient,
		"type":              "text",
		"text":              map[string]string{"body": msg.Text()},
	}, map[string]string{"Authorization": "Bearer " + s[0]})
}
