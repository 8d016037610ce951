// Package postgres provides the Postgres-backed batch repository.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratafield/writeflow/internal/store"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// BatchStoreConfig controls the Postgres connection pool used for batch writes.
type BatchStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// copyPool is the subset of pgxpool.Pool the store needs; pgxmock stands in
// for it in tests.
type copyPool interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// BatchStore writes record batches into Postgres using COPY.
type BatchStore struct {
	pool  copyPool
	table string
}

// NewBatchStore creates a Postgres-backed BatchStore using the provided config.
func NewBatchStore(ctx context.Context, cfg BatchStoreConfig) (*BatchStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewBatchStoreWithPool(pool, cfg.Table)
}

// NewBatchStoreWithPool wires an existing pool, primarily for tests.
func NewBatchStoreWithPool(pool copyPool, table string) (*BatchStore, error) {
	if table == "" {
		table = "records"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &BatchStore{pool: pool, table: table}, nil
}

// Close releases the underlying connection pool.
func (s *BatchStore) Close() {
	s.pool.Close()
}

var batchColumns = []string{"id", "task_id", "source", "key", "payload", "recorded_at"}

// WriteBatch copies the rows into the backing table in one round trip. A
// short copy count is reported as an error so the batch is accounted as
// failed.
func (s *BatchStore) WriteBatch(ctx context.Context, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	copied, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{s.table},
		batchColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{row.ID, row.TaskID, row.Source, row.Key, row.Payload, row.RecordedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy batch: %w", err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("copy batch: wrote %d of %d rows", copied, len(rows))
	}
	return nil
}
