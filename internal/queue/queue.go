// Package queue provides the bounded delivery queue that hands decoded
// messages from the stream reader to consumers. It is safe for one producer
// and any number of consumers.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned by Get when no item arrived within the timeout.
var ErrTimeout = errors.New("queue: receive timed out")

// ErrClosed is returned by Put after Close, and by Get once the queue is
// closed and fully drained.
var ErrClosed = errors.New("queue: closed")

// DefaultCapacity bounds memory and applies natural backpressure to slow
// consumers without dropping messages under normal bursts.
const DefaultCapacity = 64

// Queue is a bounded FIFO. Put blocks while the queue is full
// (block-the-producer overflow policy); Get blocks until an item arrives,
// the optional timeout expires, or the queue is closed. Items already queued
// at Close remain retrievable until drained.
type Queue[T any] struct {
	ch        chan T
	done      chan struct{}
	closeOnce sync.Once
	clearMu   sync.Mutex
}

// New creates a queue with the given capacity. Non-positive capacities fall
// back to DefaultCapacity; the queue is never unbounded.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Put appends an item, blocking while the queue is full. It returns
// ErrClosed after Close and the context error if ctx is done first.
func (q *Queue[T]) Put(ctx context.Context, item T) error {
	// A closed queue must never accept new items, even if there is room.
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- item:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get removes and returns the oldest item. A non-positive timeout means no
// timeout. Returns ErrTimeout when the timeout expires, ErrClosed when the
// queue is closed and empty, and the context error if ctx is done first.
func (q *Queue[T]) Get(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	// Fast path: an item is already present.
	select {
	case item := <-q.ch:
		return item, nil
	default:
	}

	var timer *time.Timer
	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case item := <-q.ch:
		return item, nil
	case <-q.done:
		// Closed: allow the final drain of anything still buffered.
		select {
		case item := <-q.ch:
			return item, nil
		default:
			return zero, ErrClosed
		}
	case <-timeoutC:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Clear discards all currently queued items and returns how many were
// dropped. In-flight Put and Get calls are unaffected beyond the removal.
func (q *Queue[T]) Clear() int {
	q.clearMu.Lock()
	defer q.clearMu.Unlock()

	dropped := 0
	for {
		select {
		case <-q.ch:
			dropped++
		default:
			return dropped
		}
	}
}

// Close marks the queue closed, unblocking all waiters. Queued items remain
// retrievable via Get until drained. Close is idempotent.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Len returns the number of currently queued items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }
