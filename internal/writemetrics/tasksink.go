package writemetrics

import (
	"sync/atomic"
	"time"

	"github.com/stratafield/writeflow/internal/task"
)

// writeMethodTag is the fixed tag new task records are created with.
const writeMethodTag = "batch"

// TaskMetricsSink feeds committed bytes and rows into the task-scoped
// record. Failed batches never reach the record: task metrics report only
// committed work.
type TaskMetricsSink struct {
	accessor task.MetricsAccessor
	record   atomic.Pointer[task.WriteMetricsRecord]
}

// NewTaskMetricsSink binds a sink to the task's metrics accessor. The
// accessor is not touched until the first successful batch arrives.
func NewTaskMetricsSink(accessor task.MetricsAccessor) *TaskMetricsSink {
	return &TaskMetricsSink{accessor: accessor}
}

// ensureInitialized resolves the task record on first use. Concurrent
// callers may both reach the accessor, but the accessor's get-or-create
// contract hands every caller the same record, so the local cache settles
// on one instance.
func (s *TaskMetricsSink) ensureInitialized() *task.WriteMetricsRecord {
	if rec := s.record.Load(); rec != nil {
		return rec
	}
	rec := s.accessor.GetOrCreateWriteMetrics(writeMethodTag)
	s.record.CompareAndSwap(nil, rec)
	return s.record.Load()
}

// OnBatch adds the outcome's counts to the task record when the batch
// committed, and does nothing otherwise.
func (s *TaskMetricsSink) OnBatch(outcome BatchOutcome) {
	if !outcome.Success {
		return
	}
	s.ensureInitialized().Add(outcome.Bytes, outcome.Rows)
}

// OnFinish is a no-op: task duration is published to the registry only.
func (s *TaskMetricsSink) OnFinish(time.Duration) {}
