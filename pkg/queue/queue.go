package queue

import (
	"context"
	"errors"
	"sync"
)

// Queue is an unbounded in-memory FIFO. Any number of goroutines may Enqueue;
// Dequeue is intended for a single consumer but stays correct with several.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int
	closed   bool
	notify   chan struct{} // capacity 1; a token means "items may be available"
	done     chan struct{}
	validate func(T) error
}

// New creates an empty queue.
func New[T any](opts ...Option[T]) *Queue[T] {
	q := &Queue[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends item. It never blocks.
func (q *Queue[T]) Enqueue(item T) error {
	if q.validate != nil {
		if err := q.validate(item); err != nil {
			return errors.Join(ErrInvalidItem, err)
		}
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.signal()
	return nil
}

// Dequeue removes and returns the oldest item, blocking until one is
// available. It returns ctx.Err() on cancellation and ErrQueueClosed once the
// queue is closed and empty.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T
	for {
		item, ok, closed := q.pop()
		if ok {
			return item, nil
		}
		if closed {
			return zero, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.notify:
		case <-q.done:
		}
	}
}

// TryDequeue returns the oldest item without blocking.
func (q *Queue[T]) TryDequeue() (T, bool) {
	item, ok, _ := q.pop()
	return item, ok
}

func (q *Queue[T]) pop() (item T, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return item, false, q.closed
	}

	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > cap(q.items)/2:
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	// Pass the wake-up on so another waiting consumer sees the remainder.
	if q.head < len(q.items) {
		q.signal()
	}
	return item, true, q.closed
}

func (q *Queue[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close stops accepting items. Items already queued can still be dequeued.
// Closing twice is a no-op.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
