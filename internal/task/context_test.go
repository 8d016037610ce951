package task

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateWriteMetricsReturnsSameRecord(t *testing.T) {
	t.Parallel()

	ctx := NewContext(uuid.New(), 0)
	require.Nil(t, ctx.WriteMetrics())

	first := ctx.GetOrCreateWriteMetrics("batch")
	second := ctx.GetOrCreateWriteMetrics("batch")
	require.Same(t, first, second)
	require.Equal(t, "batch", first.WriteMethod())
	require.Zero(t, first.BytesWritten())
	require.Zero(t, first.RecordsWritten())
}

func TestGetOrCreateWriteMetricsKeepsExistingTag(t *testing.T) {
	t.Parallel()

	ctx := NewContext(uuid.New(), 1)
	rec := ctx.GetOrCreateWriteMetrics("bulk")
	rec.Add(64, 4)

	again := ctx.GetOrCreateWriteMetrics("batch")
	require.Same(t, rec, again)
	require.Equal(t, "bulk", again.WriteMethod())
	require.Equal(t, uint64(64), again.BytesWritten())
	require.Equal(t, uint64(4), again.RecordsWritten())
}

// TestGetOrCreateWriteMetricsConcurrentFirstUse checks that racing creators
// converge on one record and that no increment is lost.
func TestGetOrCreateWriteMetricsConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	const goroutines = 16
	const perGoroutine = 1000

	ctx := NewContext(uuid.New(), 0)
	var wg sync.WaitGroup
	records := make([]*WriteMetricsRecord, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			rec := ctx.GetOrCreateWriteMetrics("batch")
			records[idx] = rec
			for j := 0; j < perGoroutine; j++ {
				rec.Add(10, 1)
			}
		}(i)
	}
	wg.Wait()

	rec := ctx.WriteMetrics()
	require.NotNil(t, rec)
	for _, got := range records {
		require.Same(t, rec, got)
	}
	require.Equal(t, uint64(goroutines*perGoroutine*10), rec.BytesWritten())
	require.Equal(t, uint64(goroutines*perGoroutine), rec.RecordsWritten())
}
