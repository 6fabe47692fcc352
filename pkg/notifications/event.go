package notifications

import (
	"fmt"
	"slices"
)

// EventType identifies a business event that can trigger a notification.
// Values are only obtainable from the registry; the zero value is not a valid event.
type EventType struct {
	name string
}

var (
	EventSubscriberRegistered = EventType{"SubscriberRegistered"}
	EventPasswordReset        = EventType{"PasswordReset"}
	EventOrderCreated         = EventType{"OrderCreated"}
	EventOrderShipped         = EventType{"OrderShipped"}
	EventOrderDelivered       = EventType{"OrderDelivered"}
	EventOrderCancelled       = EventType{"OrderCancelled"}
	EventPaymentSucceeded     = EventType{"PaymentSucceeded"}
	EventPaymentFailed        = EventType{"PaymentFailed"}
	EventInvoiceCreated       = EventType{"InvoiceCreated"}
	EventSubscriptionRenewed  = EventType{"SubscriptionRenewed"}
	EventSubscriptionExpiring = EventType{"SubscriptionExpiring"}
)

// allEventTypes is the process-wide event registry. It is populated once at
// package initialization and never modified afterwards.
var (
	allEventTypes = []EventType{
		EventSubscriberRegistered,
		EventPasswordReset,
		EventOrderCreated,
		EventOrderShipped,
		EventOrderDelivered,
		EventOrderCancelled,
		EventPaymentSucceeded,
		EventPaymentFailed,
		EventInvoiceCreated,
		EventSubscriptionRenewed,
		EventSubscriptionExpiring,
	}
	eventTypesByName = indexByName(allEventTypes, EventType.String)
)

// ParseEventType resolves an event type by its exact name.
func ParseEventType(name string) (EventType, error) {
	e, ok := eventTypesByName[name]
	if !ok {
		return EventType{}, fmt.Errorf("%w: %q", ErrUnknownEventType, name)
	}
	return e, nil
}

// MustParseEventType is like ParseEventType but panics on unknown names.
// Intended for static configuration such as plan definitions.
func MustParseEventType(name string) EventType {
	e, err := ParseEventType(name)
	if err != nil {
		panic(err)
	}
	return e
}

// AllEventTypes returns every registered event type in registration order.
func AllEventTypes() []EventType {
	return slices.Clone(allEventTypes)
}

// IsSupportedEventType reports whether e is a member of the registry.
func IsSupportedEventType(e EventType) bool {
	_, ok := eventTypesByName[e.name]
	return ok
}

func (e EventType) String() string {
	return e.name
}

// IsZero reports whether e is the zero value.
func (e EventType) IsZero() bool {
	return e.name == ""
}

func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.name), nil
}

func (e *EventType) UnmarshalText(text []byte) error {
	parsed, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func indexByName[T any](items []T, name func(T) string) map[string]T {
	idx := make(map[string]T, len(items))
	for _, item := range items {
		idx[name(item)] = item
	}
	return idx
}
