package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/stratafield/writeflow/internal/store"
)

func sampleRows(taskID uuid.UUID, n int) []store.Row {
	now := time.Unix(1700000000, 0).UTC()
	rows := make([]store.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, store.Row{
			ID:         uuid.New(),
			TaskID:     taskID,
			Source:     "ingest",
			Key:        "k",
			Payload:    []byte("payload"),
			RecordedAt: now,
		})
	}
	return rows
}

func TestWriteBatchCopiesRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewBatchStoreWithPool(mock, "records")
	require.NoError(t, err)

	rows := sampleRows(uuid.New(), 3)
	mock.ExpectCopyFrom(pgx.Identifier{"records"}, batchColumns).WillReturnResult(3)

	require.NoError(t, s.WriteBatch(context.Background(), rows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteBatchReportsShortCopy(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewBatchStoreWithPool(mock, "records")
	require.NoError(t, err)

	rows := sampleRows(uuid.New(), 2)
	mock.ExpectCopyFrom(pgx.Identifier{"records"}, batchColumns).WillReturnResult(1)

	err = s.WriteBatch(context.Background(), rows)
	require.Error(t, err)
	require.Contains(t, err.Error(), "wrote 1 of 2")
}

func TestWriteBatchSkipsEmptyInput(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s, err := NewBatchStoreWithPool(mock, "records")
	require.NoError(t, err)

	require.NoError(t, s.WriteBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBatchStoreWithPoolRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewBatchStoreWithPool(mock, "records; drop table users")
	require.Error(t, err)
}
