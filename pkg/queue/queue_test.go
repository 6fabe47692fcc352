package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/queue"
)

func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := queue.New[int]()
	for i := range 100 {
		require.NoError(t, q.Enqueue(i))
	}
	assert.Equal(t, 100, q.Len())

	ctx := context.Background()
	for i := range 100 {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_InterleavedEnqueueDequeue(t *testing.T) {
	t.Parallel()

	q := queue.New[int](queue.WithInitialCapacity[int](4))
	ctx := context.Background()
	next := 0
	want := 0
	for round := range 50 {
		for range round%7 + 1 {
			require.NoError(t, q.Enqueue(next))
			next++
		}
		for range round%5 + 1 {
			got, ok := q.TryDequeue()
			if !ok {
				break
			}
			assert.Equal(t, want, got)
			want++
		}
	}
	for q.Len() > 0 {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		want++
	}
	assert.Equal(t, next, want)
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	t.Parallel()

	q := queue.New[string]()
	result := make(chan string, 1)
	go func() {
		v, err := q.Dequeue(context.Background())
		if err == nil {
			result <- v
		}
	}()

	select {
	case <-result:
		t.Fatal("dequeue returned before anything was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, q.Enqueue("hello"))
	select {
	case v := <-result:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not wake up")
	}
}

func TestQueue_DequeueContextCancelled(t *testing.T) {
	t.Parallel()

	q := queue.New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_Close(t *testing.T) {
	t.Parallel()

	t.Run("drains then reports closed", func(t *testing.T) {
		t.Parallel()

		q := queue.New[int]()
		require.NoError(t, q.Enqueue(1))
		require.NoError(t, q.Enqueue(2))
		q.Close()
		q.Close()
		assert.True(t, q.Closed())

		assert.ErrorIs(t, q.Enqueue(3), queue.ErrQueueClosed)

		ctx := context.Background()
		v, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		v, err = q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, v)

		_, err = q.Dequeue(ctx)
		assert.ErrorIs(t, err, queue.ErrQueueClosed)
	})

	t.Run("wakes blocked consumer", func(t *testing.T) {
		t.Parallel()

		q := queue.New[int]()
		errCh := make(chan error, 1)
		go func() {
			_, err := q.Dequeue(context.Background())
			errCh <- err
		}()

		time.Sleep(10 * time.Millisecond)
		q.Close()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, queue.ErrQueueClosed)
		case <-time.After(time.Second):
			t.Fatal("consumer not released by Close")
		}
	})
}

func TestQueue_Validate(t *testing.T) {
	t.Parallel()

	errNegative := errors.New("negative")
	q := queue.New(queue.WithValidate(func(v int) error {
		if v < 0 {
			return errNegative
		}
		return nil
	}))

	require.NoError(t, q.Enqueue(1))
	err := q.Enqueue(-1)
	assert.ErrorIs(t, err, queue.ErrInvalidItem)
	assert.ErrorIs(t, err, errNegative)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	t.Parallel()

	type item struct {
		producer int
		seq      int
	}

	const (
		producers = 8
		perProd   = 500
	)

	q := queue.New[item]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range perProd {
				assert.NoError(t, q.Enqueue(item{producer: p, seq: s}))
			}
		}()
	}

	lastSeq := make([]int, producers)
	for i := range lastSeq {
		lastSeq[i] = -1
	}
	seen := make(map[item]bool, producers*perProd)

	for range producers * perProd {
		it, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.False(t, seen[it], "duplicate item %+v", it)
		seen[it] = true

		// Items from one producer come out in the order they went in.
		require.Equal(t, lastSeq[it.producer]+1, it.seq)
		lastSeq[it.producer] = it.seq
	}

	wg.Wait()
	assert.Len(t, seen, producers*perProd)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_MultipleConsumers(t *testing.T) {
	t.Parallel()

	const total = 1000
	q := queue.New[int]()
	ctx := context.Background()

	var (
		mu   sync.Mutex
		got  = make(map[int]int, total)
		wg   sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.Dequeue(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				got[v]++
				mu.Unlock()
			}
		}()
	}

	for i := range total {
		require.NoError(t, q.Enqueue(i))
	}
	q.Close()
	wg.Wait()

	require.Len(t, got, total)
	for v, n := range got {
		assert.Equal(t, 1, n, "item %d", v)
	}
}
