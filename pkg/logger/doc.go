// Package logger builds the service's *slog.Logger and keeps attribute names
// consistent across components.
//
// New applies functional options over JSON-at-info defaults:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "notifier"),
//		logger.WithContextExtractors(api.RequestIDExtractor()),
//	)
//	logger.SetAsDefault(log)
//
// WithDevelopment, WithStaging and WithProduction pick format and level per
// environment and stamp every record with service and env.
//
// Two mechanisms attach request-scoped values. ContextExtractor callbacks run
// on every record and read whatever the caller stored on the context, such as
// the chi request ID. ContextWithAttrs stores attributes directly on the
// context; the dispatcher uses it to tag every line about one notification
// with its subscriber, channel and event type:
//
//	ctx = logger.ContextWithAttrs(ctx, logger.SubscriberID(id), logger.Channel("email"))
//	log.InfoContext(ctx, "notification sent")
//
// Loggers from New read both. Contextual adds the same behaviour to a logger
// built elsewhere.
//
// Attribute helpers (Error, SubscriberID, Channel, EventType, Tier,
// TemplateID, QueueDepth, Duration, Component) fix the key names. Error and
// Errors return an empty attribute for nil errors, which slog drops.
package logger
