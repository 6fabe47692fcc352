package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/subscriber"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
)

// defaultContent is the global template for each event, shared by every
// channel. Email renders the body as Markdown.
var defaultContent = map[notifications.EventType]notifications.TemplateContent{
	notifications.EventSubscriberRegistered: {
		Subject: "Welcome, {Name}",
		Body:    "Hi {Name}, your account is ready.",
	},
	notifications.EventPasswordReset: {
		Subject: "Reset your password",
		Body:    "Use this link to choose a new password: {ResetURL}",
	},
	notifications.EventOrderCreated: {
		Subject: "Order {OrderID} received",
		Body:    "Hi {Name}, we received order **{OrderID}**.",
	},
	notifications.EventOrderShipped: {
		Subject: "Order {OrderID} shipped",
		Body:    "Order **{OrderID}** is on its way. Tracking: {TrackingNumber}",
	},
	notifications.EventOrderDelivered: {
		Subject: "Order {OrderID} delivered",
		Body:    "Order **{OrderID}** has been delivered.",
	},
	notifications.EventOrderCancelled: {
		Subject: "Order {OrderID} cancelled",
		Body:    "Order **{OrderID}** was cancelled. {Reason}",
	},
	notifications.EventPaymentSucceeded: {
		Subject: "Payment received",
		Body:    "We received your payment of {Amount}.",
	},
	notifications.EventPaymentFailed: {
		Subject: "Payment failed",
		Body:    "Your payment of {Amount} could not be processed.",
	},
	notifications.EventInvoiceCreated: {
		Subject: "Invoice {InvoiceID}",
		Body:    "Invoice **{InvoiceID}** for {Amount} is available.",
	},
	notifications.EventSubscriptionRenewed: {
		Subject: "Subscription renewed",
		Body:    "Your subscription was renewed until {ExpiresAt}.",
	},
	notifications.EventSubscriptionExpiring: {
		Subject: "Subscription expiring",
		Body:    "Your subscription expires on {ExpiresAt}.",
	},
}

// seedTemplates adds the missing global templates. Existing ones, possibly
// edited by an operator, are kept.
func seedTemplates(ctx context.Context, svc *notifications.TemplateService, log *slog.Logger) error {
	created := 0
	for _, event := range notifications.AllEventTypes() {
		content, ok := defaultContent[event]
		if !ok {
			continue
		}
		content.Name = event.String() + " default"

		for _, ch := range notifications.AllChannels() {
			_, err := svc.CreateGlobal(ctx, event, ch, content)
			switch {
			case err == nil:
				created++
			case errors.Is(err, notifications.ErrTemplateAlreadyExists):
			default:
				return err
			}
		}
	}
	log.InfoContext(ctx, "default templates seeded", slog.Int("created", created))
	return nil
}

const (
	demoEmail    = "demo@notifykit.local"
	demoPassword = "demo-password"
)

// seedDemo registers a Pro subscriber with the console, email and sms
// channels enabled so the API can be tried without any provider credentials.
func seedDemo(ctx context.Context, svc *subscriber.Service, log *slog.Logger) error {
	sub, _, err := svc.Register(ctx, subscriber.Params{
		CompanyName: "Demo Shop",
		Email:       demoEmail,
		Phone:       "+15550100000",
		Password:    demoPassword,
	}, subscription.TierPro)
	if errors.Is(err, subscriber.ErrEmailAlreadyExists) {
		log.InfoContext(ctx, "demo subscriber already exists")
		return nil
	}
	if err != nil {
		return err
	}

	for _, ch := range []notifications.Channel{
		notifications.ChannelConsole,
		notifications.ChannelEmail,
		notifications.ChannelSMS,
	} {
		if _, err := svc.EnableChannel(ctx, sub.ID, ch); err != nil {
			return err
		}
	}

	log.InfoContext(ctx, "demo subscriber registered", logger.SubscriberID(sub.ID))
	return nil
}
