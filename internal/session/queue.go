package session

import "sync"

// DefaultQueueCap bounds per-session queues when no cap is configured.
const DefaultQueueCap = 64

// Queue is a bounded FIFO safe for concurrent use.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	cap   int
}

// NewQueue creates a queue holding at most capacity items. A
// capacity <= 0 uses DefaultQueueCap.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultQueueCap
	}
	return &Queue[T]{cap: capacity}
}

// Enqueue appends an item and reports whether it fit.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.cap {
		return false
	}
	q.items = append(q.items, item)
	return true
}

// EnqueueEvict appends an item, evicting the oldest when full.
func (q *Queue[T]) EnqueueEvict(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.cap {
		q.items = q.items[1:]
	}
	q.items = append(q.items, item)
}

// Dequeue removes and returns the oldest item.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Drain removes and returns all queued items in order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := make([]T, len(q.items))
	copy(out, q.items)
	q.items = q.items[:0]
	return out
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
