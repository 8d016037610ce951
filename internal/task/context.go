// Package task models the execution-framework side of a write task: the
// task-scoped context and the mutable write-metrics record it owns. The
// metrics core depends only on the narrow MetricsAccessor capability, never
// on the full context.
package task

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MetricsAccessor is the capability the metrics core uses to reach the
// task-scoped record. Implementations must guarantee that concurrent
// first-use creates exactly one record.
type MetricsAccessor interface {
	// GetOrCreateWriteMetrics returns the task's write-metrics record,
	// creating it with the given write-method tag and zero counters if it
	// does not exist yet. Once a record exists it is never replaced.
	GetOrCreateWriteMetrics(method string) *WriteMetricsRecord
}

// WriteMetricsRecord accumulates committed bytes and records for one task.
// It is shared by every worker goroutine of the task; all mutation goes
// through atomic increments.
type WriteMetricsRecord struct {
	method  string
	bytes   atomic.Uint64
	records atomic.Uint64
}

// NewWriteMetricsRecord builds a zeroed record tagged with the write method.
func NewWriteMetricsRecord(method string) *WriteMetricsRecord {
	return &WriteMetricsRecord{method: method}
}

// Add increments the byte and record counters. Safe for concurrent callers;
// no update is lost.
func (r *WriteMetricsRecord) Add(bytes, records uint64) {
	r.bytes.Add(bytes)
	r.records.Add(records)
}

// WriteMethod returns the tag the record was created with.
func (r *WriteMetricsRecord) WriteMethod() string { return r.method }

// BytesWritten returns the committed byte count.
func (r *WriteMetricsRecord) BytesWritten() uint64 { return r.bytes.Load() }

// RecordsWritten returns the committed record count.
func (r *WriteMetricsRecord) RecordsWritten() uint64 { return r.records.Load() }

// Context is the per-task execution context handed to workers. The metrics
// record starts absent and is installed at most once via compare-and-swap.
type Context struct {
	id        uuid.UUID
	attempt   int
	startedAt time.Time
	metrics   atomic.Pointer[WriteMetricsRecord]
}

// NewContext constructs a context for a fresh task attempt.
func NewContext(id uuid.UUID, attempt int) *Context {
	return &Context{id: id, attempt: attempt, startedAt: time.Now()}
}

// ID returns the task identifier.
func (c *Context) ID() uuid.UUID { return c.id }

// Attempt returns the attempt number for this run of the task.
func (c *Context) Attempt() int { return c.attempt }

// StartedAt returns when the context was created.
func (c *Context) StartedAt() time.Time { return c.startedAt }

// GetOrCreateWriteMetrics implements MetricsAccessor. Losers of the
// creation race adopt the winner's record, so every caller increments the
// same instance.
func (c *Context) GetOrCreateWriteMetrics(method string) *WriteMetricsRecord {
	if rec := c.metrics.Load(); rec != nil {
		return rec
	}
	rec := NewWriteMetricsRecord(method)
	if c.metrics.CompareAndSwap(nil, rec) {
		return rec
	}
	return c.metrics.Load()
}

// WriteMetrics returns the record if one has been created, or nil. Readers
// use this to report task totals without forcing creation.
func (c *Context) WriteMetrics() *WriteMetricsRecord {
	return c.metrics.Load()
}
