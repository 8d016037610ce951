// Package writer implements the batch-write pipeline execution loop.
package writer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stratafield/writeflow/internal/config"
	"github.com/stratafield/writeflow/internal/store"
	"github.com/stratafield/writeflow/internal/task"
	"github.com/stratafield/writeflow/internal/writemetrics"
)

// Source supplies write requests to the pipeline.
type Source interface {
	Dequeue(ctx context.Context) (store.WriteRequest, error)
}

// Config controls Writer behavior.
type Config struct {
	// BatchSize is the maximum rows per persisted batch.
	BatchSize int
	// Concurrency bounds the parallel batch writes within one task.
	Concurrency int
}

// Writer consumes write requests and executes them batch by batch. Each
// request runs as one task with its own metrics updater; batches within the
// task are written concurrently and accounted through the updater.
type Writer struct {
	queue      Source
	repo       store.BatchRepository
	metricsCfg config.MetricsConfig
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Writer.
func New(
	queue Source,
	repo store.BatchRepository,
	metricsCfg config.MetricsConfig,
	cfg Config,
	logger *zap.Logger,
) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		queue:      queue,
		repo:       repo,
		metricsCfg: metricsCfg,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run blocks, consuming write requests until the context finishes or the
// source closes.
func (w *Writer) Run(ctx context.Context) {
	for {
		req, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, store.ErrQueueClosed) {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.ProcessTask(ctx, req)
	}
}

// ProcessTask writes one task's rows and accounts every batch through a
// task-scoped metrics updater. The elapsed wall time is published exactly
// once when the task drains.
func (w *Writer) ProcessTask(ctx context.Context, req store.WriteRequest) {
	taskCtx := task.NewContext(req.TaskID, 0)
	updater := writemetrics.New(taskCtx, w.metricsCfg)

	g := &errgroup.Group{}
	g.SetLimit(w.cfg.Concurrency)
	for _, batch := range splitRows(req.Rows, w.cfg.BatchSize) {
		g.Go(func() error {
			w.writeBatch(ctx, updater, req, batch)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // batch failures are accounted, not propagated

	elapsed := updater.Finish()
	fields := []zap.Field{
		zap.String("task_id", req.TaskID.String()),
		zap.Duration("elapsed", elapsed),
	}
	if rec := taskCtx.WriteMetrics(); rec != nil {
		fields = append(fields,
			zap.Uint64("bytes_written", rec.BytesWritten()),
			zap.Uint64("records_written", rec.RecordsWritten()),
		)
	}
	w.logger.Info("write task finished", fields...)
}

func (w *Writer) writeBatch(
	ctx context.Context,
	updater *writemetrics.Updater,
	req store.WriteRequest,
	rows []store.Row,
) {
	started := time.Now()
	err := w.repo.WriteBatch(ctx, rows)
	finished := time.Now()

	var bytes uint64
	for _, row := range rows {
		bytes += row.Size()
	}
	if err != nil {
		w.logger.Warn("batch write failed",
			zap.String("task_id", req.TaskID.String()),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
	}
	updater.BatchFinished(writemetrics.BatchOutcome{
		Success:    err == nil,
		Bytes:      bytes,
		Rows:       uint64(len(rows)),
		StartedAt:  started,
		FinishedAt: finished,
	})
}

// splitRows chunks rows into batches of at most size.
func splitRows(rows []store.Row, size int) [][]store.Row {
	if len(rows) == 0 {
		return nil
	}
	batches := make([][]store.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		batches = append(batches, rows[start:end])
	}
	return batches
}
