package queue

import "errors"

var (
	// ErrQueueClosed is returned by Enqueue after Close, and by Dequeue once
	// the queue is closed and drained.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrInvalidItem is returned when the validate hook rejects an item.
	ErrInvalidItem = errors.New("invalid queue item")
)
