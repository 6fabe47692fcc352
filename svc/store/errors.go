package store

import "errors"

var (
	ErrInvalidRecord = errors.New("invalid stored record")
	ErrNilDependency = errors.New("store dependency cannot be nil")
)
