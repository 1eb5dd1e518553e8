// Package queue buffers picked notifications between the pick flow and the
// notification workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/pkg/metrics"
)

const defaultCapacity = 10_000

// Notification is the payload type flowing through the queue.
type Notification = model.PickedNotification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds n to the queue.
	// Returns false if the queue is full or closed and n was dropped.
	Enqueue(ctx context.Context, n Notification) bool

	// Dequeue returns a channel that receives queued notifications.
	// The channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Notification

	// Len returns the current number of queued notifications.
	Len(ctx context.Context) int

	// Close stops accepting notifications. Already queued ones stay readable.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Notification
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Notification, q.capacity)
	metrics.UpdateNotifyQueueSize(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordNotificationDropped()
		return false
	}

	select {
	case q.items <- n:
		metrics.UpdateNotifyQueueSize(len(q.items))
		return true
	case <-ctx.Done():
		metrics.RecordNotificationDropped()
		return false
	default:
		metrics.RecordNotificationDropped()
		return false // queue is full
	}
}

func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Notification {
	return q.items
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.items)
	metrics.UpdateNotifyQueueSize(size)
	return size
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
