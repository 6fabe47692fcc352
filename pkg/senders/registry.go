package senders

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Registry maps each channel to exactly one Sender. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	senders map[notifications.Channel]Sender
}

// NewRegistry indexes senders by channel. Two senders for one channel fail
// with ErrDuplicateSender.
func NewRegistry(senders ...Sender) (*Registry, error) {
	r := &Registry{senders: make(map[notifications.Channel]Sender, len(senders))}
	for _, s := range senders {
		if s == nil {
			return nil, fmt.Errorf("%w: nil sender", ErrInvalidSender)
		}
		ch := s.Channel()
		if !notifications.IsSupportedChannel(ch) {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidSender, notifications.ErrUnknownChannel, ch)
		}
		if _, ok := r.senders[ch]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSender, ch)
		}
		r.senders[ch] = s
	}
	return r, nil
}

// Validate fails with ErrSenderNotRegistered naming every channel without a
// sender. With no arguments it checks the full channel registry.
func (r *Registry) Validate(channels ...notifications.Channel) error {
	if len(channels) == 0 {
		channels = notifications.AllChannels()
	}

	var missing []string
	for _, ch := range channels {
		if _, ok := r.senders[ch]; !ok {
			missing = append(missing, ch.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSenderNotRegistered, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the sender for ch.
func (r *Registry) Get(ch notifications.Channel) (Sender, bool) {
	s, ok := r.senders[ch]
	return s, ok
}

// Channels lists registered channels sorted by name.
func (r *Registry) Channels() []notifications.Channel {
	out := make([]notifications.Channel, 0, len(r.senders))
	for ch := range r.senders {
		out = append(out, ch)
	}
	slices.SortFunc(out, notifications.CompareChannels)
	return out
}

// Send routes msg to the sender registered for ch. A panicking sender is
// turned into an ErrSendFailed error.
func (r *Registry) Send(ctx context.Context, ch notifications.Channel, msg Message) (err error) {
	s, ok := r.senders[ch]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSenderNotRegistered, ch)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = sendFailed(ch, fmt.Errorf("sender panicked: %v", rec))
		}
	}()

	return s.Send(ctx, msg.clone())
}
