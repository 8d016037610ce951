// Package memory provides storage implementations for local development.
package memory

import (
	"context"
	"sync"

	"github.com/stratafield/writeflow/internal/store"
)

// BatchStore keeps written rows in memory. It backs local development runs
// and the writer tests.
type BatchStore struct {
	mu   sync.Mutex
	rows []store.Row
}

// NewBatchStore constructs an empty in-memory store.
func NewBatchStore() *BatchStore {
	return &BatchStore{}
}

// WriteBatch appends the rows, honoring context cancellation.
func (s *BatchStore) WriteBatch(ctx context.Context, rows []store.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// Rows returns a copy of everything written so far.
func (s *BatchStore) Rows() []store.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Row, len(s.rows))
	copy(out, s.rows)
	return out
}
