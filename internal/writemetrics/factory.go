package writemetrics

import (
	"github.com/stratafield/writeflow/internal/config"
	"github.com/stratafield/writeflow/internal/task"
)

// New builds the Updater for one task. The task sink is attached only when
// task metrics are enabled; when disabled the accessor is never consulted.
// The registry sink is attached only if the process-wide registry has
// already been initialized, and is never created implicitly. Zero attached
// sinks is not an error.
func New(accessor task.MetricsAccessor, cfg config.MetricsConfig) *Updater {
	var sinks []Sink
	if cfg.TaskMetricsEnabled && accessor != nil {
		sinks = append(sinks, NewTaskMetricsSink(accessor))
	}
	if registry, ok := ActiveRegistry(); ok {
		sinks = append(sinks, registry)
	}
	return newUpdater(sinks)
}
