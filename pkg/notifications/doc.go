// Package notifications holds the delivery domain: the closed registries of
// event types and channels, the queued Command, templates with their resolver
// and renderer, and the immutable dispatch Log.
//
// # Registries
//
// EventType and Channel values can only be obtained from the package registries,
// which are built once at initialization and never modified:
//
//	event, err := notifications.ParseEventType("OrderCreated")
//	if errors.Is(err, notifications.ErrUnknownEventType) {
//	    // reject the request
//	}
//
//	ch, err := notifications.ParseChannel("email")
//
// # Templates
//
// A template is either global (the system default for an event and channel) or
// custom (owned by a subscriber). Resolver hides that distinction from the send path:
//
//	resolver := notifications.NewResolver(store)
//	tpl, err := resolver.Resolve(ctx, event, ch, subscriberID)
//
// Custom templates always win; ErrTemplateNotFound is returned if neither exists.
//
// # Rendering
//
// Placeholders use the {Name} syntax and are substituted in a single pass.
// Unknown placeholders stay in the output untouched:
//
//	r := notifications.NewRenderer()
//	body, err := r.Render(ctx, "Hello {Name}, order no: {OrderId}", notifications.ChannelSMS,
//	    map[string]string{"Name": "Enes", "OrderId": "12345"})
//	// body == "Hello Enes, order no: 12345"
//
// Email bodies are written in Markdown and expanded to HTML after substitution.
//
// # Storage
//
// TemplateStore and LogStore abstract persistence. In-memory implementations are
// provided for tests and local development; database-backed ones live in svc/store.
package notifications
