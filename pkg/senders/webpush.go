package senders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// WebPush delivers encrypted browser push messages.
// Settings: vapid_public_key, vapid_private_key, subscriber (contact email or
// URL). The recipient is the browser's PushSubscription serialized as JSON.
type WebPush struct {
	opts httpOptions
	ttl  int
}

func NewWebPush(opts ...HTTPOption) *WebPush {
	return &WebPush{opts: newHTTPOptions("", opts), ttl: 24 * 60 * 60}
}

func (w *WebPush) Channel() notifications.Channel { return notifications.ChannelWebPush }

type webPushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Event string `json:"event"`
}

func (w *WebPush) Send(ctx context.Context, msg Message) error {
	s, err := msg.settings(w.Channel(), "vapid_public_key", "vapid_private_key", "subscriber")
	if err != nil {
		return err
	}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(msg.Recipient), &sub); err != nil {
		return sendFailed(w.Channel(), fmt.Errorf("decode push subscription: %w", err))
	}
	if err := validateEndpoint(sub.Endpoint); err != nil {
		return sendFailed(w.Channel(), err)
	}

	payload, err := json.Marshal(webPushPayload{Title: msg.Subject, Body: msg.Body, Event: msg.EventType.String()})
	if err != nil {
		return sendFailed(w.Channel(), err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, w.opts.timeout)
	defer cancel()

	resp, err := webpush.SendNotificationWithContext(reqCtx, payload, &sub, &webpush.Options{
		HTTPClient:      w.opts.client,
		Subscriber:      s[2],
		TTL:             w.ttl,
		Urgency:         webpush.UrgencyNormal,
		VAPIDPublicKey:  s[0],
		VAPIDPrivateKey: s[1],
	})
	if err != nil {
		return sendFailed(w.Channel(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseRead))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sendFailed(w.Channel(), statusError(resp.StatusCode, body))
	}
	return nil
}
