package senders

import "errors"

var (
	// ErrSendFailed wraps every delivery failure returned by a Sender.
	ErrSendFailed = errors.New("notification send failed")

	// ErrMissingSetting means a provider setting the channel needs is absent.
	// It is always returned together with ErrSendFailed.
	ErrMissingSetting = errors.New("missing provider setting")

	// ErrInvalidSetting means a provider setting is present but unusable.
	// It is always returned together with ErrSendFailed.
	ErrInvalidSetting = errors.New("invalid provider setting")

	ErrDuplicateSender     = errors.New("duplicate sender for channel")
	ErrSenderNotRegistered = errors.New("no sender registered for channel")
	ErrInvalidSender       = errors.New("invalid sender")

	ErrSettingsNotFound = errors.New("provider settings not found")
)
