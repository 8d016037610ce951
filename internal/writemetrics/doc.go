// Package writemetrics accumulates per-batch write statistics for a task
// and publishes them to up to two independent sinks: the task-scoped record
// owned by the execution framework and the process-wide Prometheus registry
// shared across tasks. The updater is built once per task and is safe for
// uncoordinated concurrent use by every worker goroutine of that task.
package writemetrics
