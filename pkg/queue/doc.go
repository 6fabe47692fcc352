// Package queue provides Queue, an unbounded in-memory FIFO safe for many
// producers and a single consumer.
//
// Enqueue never blocks. Dequeue blocks until an item arrives, the context is
// cancelled, or the queue is closed and drained:
//
//	q := queue.New[notifications.Command](
//		queue.WithValidate(func(c notifications.Command) error { return c.Validate() }),
//	)
//
//	// producers
//	if err := q.Enqueue(cmd); err != nil {
//		return err
//	}
//
//	// consumer
//	for {
//		cmd, err := q.Dequeue(ctx)
//		if err != nil {
//			return err // context cancelled or queue closed
//		}
//		handle(cmd)
//	}
//
// The queue lives in process memory only. Items still queued when the process
// exits are lost.
package queue
