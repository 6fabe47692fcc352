package subscriber

import "errors"

var (
	ErrInvalidSubscriber   = errors.New("invalid subscriber")
	ErrSubscriberNotFound  = errors.New("subscriber not found")
	ErrEmailAlreadyExists  = errors.New("subscriber email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrChannelNotAllowed   = errors.New("channel not allowed by subscription plan")
	ErrPhoneRequired       = errors.New("phone number is required for sms channel")
	ErrTooManyChannels     = errors.New("too many active channels")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)
