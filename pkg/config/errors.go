package config

import "errors"

var (
	// ErrParsingConfig wraps env tag parsing failures, including missing
	// required variables.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrReadingEnvFile is returned when an explicitly requested .env file
	// cannot be read.
	ErrReadingEnvFile = errors.New("failed to read env file")

	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
