package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/notifykit/pkg/queue"
	"github.com/dmitrymomot/notifykit/pkg/subscriber"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
	"github.com/dmitrymomot/notifykit/pkg/validator"
	"github.com/dmitrymomot/notifykit/svc/dispatcher"
)

var (
	ErrInvalidSubscriberID = errors.New("invalid subscriber id")
	ErrInvalidBody         = errors.New("invalid request body")
	ErrInvalidQuery        = errors.New("invalid query parameter")
)

// errorInfo is how a handler error is reported to the client.
type errorInfo struct {
	status  int
	code    string
	message string
	details map[string][]string
}

func classifyError(err error) errorInfo {
	info := errorInfo{
		status:  http.StatusInternalServerError,
		code:    "internal_error",
		message: "an error occurred processing your request",
	}

	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		info.status, info.code, info.message = http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large"
	case errors.Is(err, ErrInvalidSubscriberID),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, dispatcher.ErrInvalidTrigger):
		info.status, info.code, info.message = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, dispatcher.ErrEventNotAllowed),
		errors.Is(err, dispatcher.ErrChannelNotAllowed),
		errors.Is(err, dispatcher.ErrChannelNotEnabled):
		info.status, info.code, info.message = http.StatusForbidden, "not_allowed", err.Error()
	case errors.Is(err, subscriber.ErrSubscriberNotFound),
		errors.Is(err, subscription.ErrSubscriptionNotFound):
		info.status, info.code, info.message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, queue.ErrQueueClosed):
		info.status, info.code, info.message = http.StatusServiceUnavailable, "shutting_down", "service is shutting down"
	}

	if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
		info.details = make(map[string][]string)
		for _, field := range ve.Fields() {
			info.details[field] = ve.Get(field)
		}
	}
	return info
}
