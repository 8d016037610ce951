package writemetrics

import "time"

// Sink consumes batch outcomes and the final task duration. Implementations
// must be fast, non-blocking, and safe for concurrent OnBatch calls; the
// updater iterates its sinks uniformly, so adding a sink kind requires no
// dispatch changes.
type Sink interface {
	// OnBatch records one completed write attempt.
	OnBatch(outcome BatchOutcome)
	// OnFinish records the task's total wall time. Called at most once.
	OnFinish(elapsed time.Duration)
}
