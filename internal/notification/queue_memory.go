package notification

import (
	"context"
	"sync"
)

// MemoryQueue очередь на буферизованном канале, при переполнении событие отбрасывается
type MemoryQueue struct {
	mu     sync.RWMutex
	ch     chan Event
	closed bool
}

// NewMemoryQueue создает очередь на size событий
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Event, size)}
}

func (q *MemoryQueue) TryPush(ev Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-q.ch:
		if !ok {
			return Event{}, ErrQueueClosed
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	return len(q.ch), nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	return nil
}
