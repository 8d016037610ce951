// Package memory provides queue implementations for local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/stratafield/writeflow/internal/store"
)

// Queue is a bounded in-memory queue of write requests with context-aware
// operations.
type Queue struct {
	ch      chan store.WriteRequest
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan store.WriteRequest, capacity),
	}
}

// Enqueue pushes a write request into the queue or returns if the context ends.
func (q *Queue) Enqueue(ctx context.Context, req store.WriteRequest) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- req:
		return nil
	}
}

// Dequeue pops the next write request, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (store.WriteRequest, error) {
	select {
	case <-ctx.Done():
		return store.WriteRequest{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case req, ok := <-q.ch:
		if !ok {
			return store.WriteRequest{}, store.ErrQueueClosed
		}
		return req, nil
	}
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
