package writemetrics

import "time"

// BatchOutcome describes one completed write attempt. The batch-execution
// layer creates one per batch; Bytes and Rows carry the batch's own counts
// regardless of whether the attempt succeeded.
type BatchOutcome struct {
	// Success reports whether the batch was committed.
	Success bool
	// Bytes is the encoded payload size of the batch.
	Bytes uint64
	// Rows is the number of records in the batch.
	Rows uint64
	// StartedAt is when the write attempt began.
	StartedAt time.Time
	// FinishedAt is when the write attempt completed.
	FinishedAt time.Time
}

// Duration returns the wall time the write attempt took.
func (o BatchOutcome) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}
