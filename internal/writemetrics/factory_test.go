package writemetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/stratafield/writeflow/internal/config"
)

// Factory tests exercise the process-wide registry singleton and therefore
// do not run in parallel.

func TestNewAttachesNoSinksWhenEverythingDisabled(t *testing.T) {
	ResetRegistry()

	accessor := newCountingAccessor(t)
	u := New(accessor, config.MetricsConfig{TaskMetricsEnabled: false})
	require.Empty(t, u.sinks)

	// A sinkless updater still accepts the full call sequence.
	u.BatchFinished(BatchOutcome{Success: true, Bytes: 10, Rows: 1})
	u.Finish()
	require.Zero(t, accessor.calls.Load())
	require.Nil(t, accessor.ctx.WriteMetrics())
}

func TestNewNeverTouchesAccessorWhenDisabled(t *testing.T) {
	t.Cleanup(ResetRegistry)
	_, err := InitRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	accessor := newCountingAccessor(t)
	u := New(accessor, config.MetricsConfig{TaskMetricsEnabled: false})
	require.Len(t, u.sinks, 1)

	u.BatchFinished(BatchOutcome{Success: true, Bytes: 10, Rows: 1})
	u.Finish()
	require.Zero(t, accessor.calls.Load())
}

func TestNewSkipsRegistryWhenUninitialized(t *testing.T) {
	ResetRegistry()

	accessor := newCountingAccessor(t)
	u := New(accessor, config.MetricsConfig{TaskMetricsEnabled: true})
	require.Len(t, u.sinks, 1)
	_, isTask := u.sinks[0].(*TaskMetricsSink)
	require.True(t, isTask)
}

func TestNewWithBothSinksSplitsAccounting(t *testing.T) {
	t.Cleanup(ResetRegistry)
	registry, err := InitRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	accessor := newCountingAccessor(t)
	u := New(accessor, config.MetricsConfig{TaskMetricsEnabled: true})
	require.Len(t, u.sinks, 2)

	u.BatchFinished(BatchOutcome{Success: true, Bytes: 100, Rows: 10})
	u.BatchFinished(BatchOutcome{Success: false, Bytes: 100, Rows: 10})

	// Task record holds committed work only.
	rec := accessor.ctx.WriteMetrics()
	require.NotNil(t, rec)
	require.Equal(t, uint64(100), rec.BytesWritten())
	require.Equal(t, uint64(10), rec.RecordsWritten())

	// Registry meters accumulate attempted volume from both outcomes.
	require.InDelta(t, 200.0, testutil.ToFloat64(registry.bytesTotal), 1e-9)
	require.InDelta(t, 20.0, testutil.ToFloat64(registry.rowsTotal), 1e-9)
	require.Equal(t, 1.0, testutil.ToFloat64(registry.batchesSuccess))
	require.Equal(t, 1.0, testutil.ToFloat64(registry.batchesFailure))

	u.Finish()
	require.Equal(t, 1, testutil.CollectAndCount(registry.taskDuration, "writeflow_write_task_duration_seconds"))
}
