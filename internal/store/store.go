package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed signals that a write-request queue has shut down and no
// further requests will arrive.
var ErrQueueClosed = errors.New("write queue closed")

// Row is one record destined for the backing table.
type Row struct {
	// ID is the primary key assigned at submission.
	ID uuid.UUID
	// TaskID is the write task the row belongs to.
	TaskID uuid.UUID
	// Source labels the producer of the record.
	Source string
	// Key is the logical record key.
	Key string
	// Payload is the encoded record body.
	Payload []byte
	// RecordedAt is when the record was produced.
	RecordedAt time.Time
}

// Size returns the encoded payload size used for byte accounting.
func (r Row) Size() uint64 {
	return uint64(len(r.Payload))
}

// WriteRequest is a task submitted to the pipeline: a set of rows to be
// split into batches and written.
type WriteRequest struct {
	TaskID uuid.UUID
	Source string
	Rows   []Row
}

// BatchRepository persists one batch of rows atomically. Implementations
// must be safe for concurrent use by the writer pool.
type BatchRepository interface {
	WriteBatch(ctx context.Context, rows []Row) error
}
