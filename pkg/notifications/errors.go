package notifications

import "errors"

var (
	// Registry errors
	ErrUnknownEventType = errors.New("unknown event type")
	ErrUnknownChannel   = errors.New("unknown notification channel")

	// Template errors
	ErrTemplateNotFound      = errors.New("notification template not found")
	ErrTemplateAlreadyExists = errors.New("notification template already exists")
	ErrEmptySubject          = errors.New("template subject cannot be empty")
	ErrEmptyBody             = errors.New("template body cannot be empty")
	ErrEmptyTemplateName     = errors.New("template name cannot be empty")
	ErrTemplateOwnerMismatch = errors.New("template belongs to another subscriber")

	// Command errors
	ErrInvalidCommand = errors.New("invalid notification command")

	// Rendering errors
	ErrRenderFailed = errors.New("failed to render notification template")

	// Log errors
	ErrInvalidLog = errors.New("invalid notification log")
)
