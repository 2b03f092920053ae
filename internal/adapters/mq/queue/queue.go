// Package queue holds a player's pending key presses.
//
// A queue is bounded and never blocks producers: an action offered while the
// queue is full, paused or closed is dropped. Consumers and producers that
// want to wait use Next and WaitForSpace, both of which honour ctx.
package queue

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/trio/pkg/metrics"
)

const defaultQueueCapacity = 3

// Drop reasons reported to metrics.
const (
	reasonFull   = "queue_full"
	reasonPaused = "paused"
	reasonClosed = "closed"
)

// Queue provides non-blocking enqueue and blocking, cancellable dequeue.
type Queue interface {
	// Enqueue adds a slot to the queue.
	// Returns false if the queue is full, paused or closed.
	Enqueue(ctx context.Context, slot int) bool

	// Next blocks until a slot is available and returns it.
	Next(ctx context.Context) (int, error)

	// TryNext returns the head without blocking.
	TryNext() (int, bool)

	// WaitForSpace blocks until an Enqueue could succeed.
	WaitForSpace(ctx context.Context) error

	// Remove drops every pending occurrence of slots and returns how many.
	Remove(slots ...int) int

	// Clear drops every pending action and returns how many.
	Clear() int

	// Pause makes Enqueue drop actions until Resume.
	Pause()
	Resume()

	// Len returns the current number of queued actions.
	Len(ctx context.Context) int

	// Close wakes every waiter; subsequent calls fail with ErrClosed.
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a slice guarded by a mutex. Waiters
// park on a channel that is closed and replaced on every state change.
type InMemoryQueue struct {
	mu       sync.Mutex
	items    []int
	capacity int
	paused   bool
	closed   bool
	changed  chan struct{}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make([]int, 0, q.capacity)
	return q
}

func (q *InMemoryQueue) broadcastLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}

// Enqueue adds a slot to the queue.
func (q *InMemoryQueue) Enqueue(_ context.Context, slot int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case q.closed:
		metrics.RecordInputDropped(reasonClosed)
		return false
	case q.paused:
		metrics.RecordInputDropped(reasonPaused)
		return false
	case len(q.items) >= q.capacity:
		metrics.RecordInputDropped(reasonFull)
		return false
	}

	q.items = append(q.items, slot)
	metrics.RecordQueueEnqueue()
	q.broadcastLocked()
	return true
}

// Next blocks until a slot is available and returns it.
func (q *InMemoryQueue) Next(ctx context.Context) (int, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			slot := q.popLocked()
			q.mu.Unlock()
			return slot, nil
		}
		if q.closed {
			q.mu.Unlock()
			return 0, ErrClosed
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-wait:
		}
	}
}

// TryNext returns the head without blocking.
func (q *InMemoryQueue) TryNext() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return 0, false
	}
	return q.popLocked(), true
}

func (q *InMemoryQueue) popLocked() int {
	slot := q.items[0]
	q.items = slices.Delete(q.items, 0, 1)
	metrics.RecordQueueDequeue()
	q.broadcastLocked()
	return slot
}

// WaitForSpace blocks until the queue is open, not paused and not full.
func (q *InMemoryQueue) WaitForSpace(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		if !q.paused && len(q.items) < q.capacity {
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// Remove drops every pending occurrence of slots.
func (q *InMemoryQueue) Remove(slots ...int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(s int) bool {
		return slices.Contains(slots, s)
	})
	removed := before - len(q.items)
	if removed > 0 {
		metrics.RecordQueueRemoved(removed)
		q.broadcastLocked()
	}
	return removed
}

// Clear drops every pending action.
func (q *InMemoryQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := len(q.items)
	q.items = q.items[:0]
	if removed > 0 {
		metrics.RecordQueueRemoved(removed)
		q.broadcastLocked()
	}
	return removed
}

// Pause makes Enqueue drop actions until Resume.
func (q *InMemoryQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.paused {
		q.paused = true
		q.broadcastLocked()
	}
}

// Resume re-opens the queue for Enqueue.
func (q *InMemoryQueue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.paused {
		q.paused = false
		q.broadcastLocked()
	}
}

// Paused reports whether the queue is paused.
func (q *InMemoryQueue) Paused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// Len returns the current number of queued actions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close wakes every waiter. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	q.broadcastLocked()
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
