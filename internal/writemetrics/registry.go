package writemetrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistrySink exports write statistics for every task in the process. Its
// collectors are plain Prometheus counters and a histogram, so increments
// from concurrently running tasks interleave without loss.
type RegistrySink struct {
	bytesTotal     prometheus.Counter
	rowsTotal      prometheus.Counter
	batchesSuccess prometheus.Counter
	batchesFailure prometheus.Counter
	taskDuration   prometheus.Histogram

	registerer prometheus.Registerer
}

var (
	registryMu     sync.Mutex
	activeRegistry *RegistrySink
)

// InitRegistry initializes the process-wide registry sink against the given
// registerer, registering all collectors. It is idempotent: once a sink is
// active, later calls return it untouched. Passing nil uses the default
// registerer.
func InitRegistry(reg prometheus.Registerer) (*RegistrySink, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if activeRegistry != nil {
		return activeRegistry, nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s, err := newRegistrySink(reg)
	if err != nil {
		return nil, err
	}
	activeRegistry = s
	return s, nil
}

// ActiveRegistry reports the process-wide sink if one has been initialized.
// It never initializes implicitly.
func ActiveRegistry() (*RegistrySink, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	return activeRegistry, activeRegistry != nil
}

// ResetRegistry unregisters the active sink's collectors and clears the
// singleton. Tests use it as an explicit teardown between runs.
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	if activeRegistry == nil {
		return
	}
	for _, c := range activeRegistry.collectors() {
		activeRegistry.registerer.Unregister(c)
	}
	activeRegistry = nil
}

func newRegistrySink(reg prometheus.Registerer) (*RegistrySink, error) {
	s := &RegistrySink{
		bytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "writeflow_write_bytes_total",
			Help: "Bytes carried by completed write batches, successful or not.",
		}),
		rowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "writeflow_write_rows_total",
			Help: "Rows carried by completed write batches, successful or not.",
		}),
		batchesSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "writeflow_write_batches_success_total",
			Help: "Write batches that committed.",
		}),
		batchesFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "writeflow_write_batches_failure_total",
			Help: "Write batches that failed.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "writeflow_write_task_duration_seconds",
			Help:    "Wall time per completed write task.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		registerer: reg,
	}
	for _, collector := range s.collectors() {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register write collector: %w", err)
		}
	}
	return s, nil
}

func (s *RegistrySink) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		s.bytesTotal,
		s.rowsTotal,
		s.batchesSuccess,
		s.batchesFailure,
		s.taskDuration,
	}
}

// OnBatch accounts a completed write attempt. Byte and row meters track
// attempted volume, so they increment with the outcome's own counts on both
// success and failure; exactly one of the success/failure counters moves.
func (s *RegistrySink) OnBatch(outcome BatchOutcome) {
	s.bytesTotal.Add(float64(outcome.Bytes))
	s.rowsTotal.Add(float64(outcome.Rows))
	if outcome.Success {
		s.batchesSuccess.Inc()
	} else {
		s.batchesFailure.Inc()
	}
}

// OnFinish observes the task's total wall time. The updater guarantees at
// most one call per task.
func (s *RegistrySink) OnFinish(elapsed time.Duration) {
	s.taskDuration.Observe(elapsed.Seconds())
}
