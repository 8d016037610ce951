package writemetrics

import (
	"sync/atomic"
	"time"
)

// Updater fans completed batch outcomes out to its attached sinks. One
// Updater serves one task; any number of the task's worker goroutines may
// call BatchFinished concurrently without external synchronization. An
// Updater with zero sinks is a valid no-op recorder.
type Updater struct {
	sinks    []Sink
	start    time.Time
	finished atomic.Bool
}

func newUpdater(sinks []Sink) *Updater {
	return &Updater{
		sinks: sinks,
		start: time.Now(),
	}
}

// BatchFinished dispatches one completed write attempt to every attached
// sink. It never blocks and never fails.
func (u *Updater) BatchFinished(outcome BatchOutcome) {
	for _, sink := range u.sinks {
		sink.OnBatch(outcome)
	}
}

// Finish stops the task's wall-time measurement and publishes the elapsed
// duration to the sinks. Callers invoke it exactly once at task completion;
// a stray second call returns the elapsed time but publishes nothing.
func (u *Updater) Finish() time.Duration {
	elapsed := time.Since(u.start)
	if !u.finished.CompareAndSwap(false, true) {
		return elapsed
	}
	for _, sink := range u.sinks {
		sink.OnFinish(elapsed)
	}
	return elapsed
}
