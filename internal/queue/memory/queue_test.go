package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stratafield/writeflow/internal/store"
)

func TestQueueRoundTrip(t *testing.T) {
	t.Parallel()

	q := NewQueue(2)
	defer q.Close()

	req := store.WriteRequest{TaskID: uuid.New(), Source: "ingest"}
	require.NoError(t, q.Enqueue(context.Background(), req))

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.Equal(t, req.TaskID, got.TaskID)
}

func TestQueueDequeueRespectsContext(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueCloseDrains(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), store.WriteRequest{TaskID: uuid.New()}))
	q.Close()
	q.Close() // idempotent

	_, err := q.Dequeue(context.Background())
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background())
	require.ErrorIs(t, err, store.ErrQueueClosed)
}
