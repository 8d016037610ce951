package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stratafield/writeflow/internal/api"
	"github.com/stratafield/writeflow/internal/config"
	"github.com/stratafield/writeflow/internal/logging"
	queuememory "github.com/stratafield/writeflow/internal/queue/memory"
	storagememory "github.com/stratafield/writeflow/internal/storage/memory"
	"github.com/stratafield/writeflow/internal/storage/postgres"
	"github.com/stratafield/writeflow/internal/store"
	"github.com/stratafield/writeflow/internal/writemetrics"
	"github.com/stratafield/writeflow/internal/writer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := writemetrics.InitRegistry(nil); err != nil {
		logger.Fatal("metrics registry init failed", zap.Error(err))
	}

	var repo store.BatchRepository
	if cfg.DB.DSN != "" {
		pgStore, err := postgres.NewBatchStore(ctx, postgres.BatchStoreConfig{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			logger.Fatal("postgres init failed", zap.Error(err))
		}
		defer pgStore.Close()
		repo = pgStore
	} else {
		logger.Warn("db.dsn not set, using in-memory store")
		repo = storagememory.NewBatchStore()
	}

	queue := queuememory.NewQueue(cfg.Writer.QueueDepth)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Writer.Concurrency; i++ {
		w := writer.New(
			queue,
			repo,
			cfg.Metrics,
			writer.Config{BatchSize: cfg.Writer.BatchSize, Concurrency: cfg.Writer.Concurrency},
			logging.Component(logger, "writer").With(zap.Int("index", i)),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	apiServer := api.NewServer(queue, logging.Component(logger, "api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	queue.Close()
	wg.Wait()
	logger.Info("shutdown complete")
}
