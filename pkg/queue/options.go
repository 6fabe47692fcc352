package queue

// Option configures a Queue.
type Option[T any] func(*Queue[T])

// WithValidate registers a hook run synchronously on every Enqueue. Items it
// rejects are never queued.
func WithValidate[T any](fn func(T) error) Option[T] {
	return func(q *Queue[T]) {
		if fn != nil {
			q.validate = fn
		}
	}
}

// WithInitialCapacity preallocates room for n items.
func WithInitialCapacity[T any](n int) Option[T] {
	return func(q *Queue[T]) {
		if n > 0 {
			q.items = make([]T, 0, n)
		}
	}
}
