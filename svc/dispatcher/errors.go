package dispatcher

import "errors"

var (
	ErrAlreadyStarted = errors.New("dispatcher already started")
	ErrNotStarted     = errors.New("dispatcher not started")

	// ErrChannelNotAllowed means the subscriber's plan does not include the channel.
	ErrChannelNotAllowed = errors.New("channel not allowed by subscription plan")
	// ErrEventNotAllowed means the subscriber's plan does not include the event type.
	ErrEventNotAllowed = errors.New("event type not allowed by subscription plan")
	// ErrChannelNotEnabled means the subscriber has not activated the channel.
	ErrChannelNotEnabled = errors.New("channel not enabled for subscriber")

	ErrInvalidTrigger = errors.New("invalid trigger request")
)
