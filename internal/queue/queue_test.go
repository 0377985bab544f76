package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
)

func newTestQueue(t *testing.T) *Queue {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "scorecard:jobs")
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "proc-001"))
	require.NoError(t, q.Enqueue(ctx, "proc-002"))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	id, ok, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "proc-001", id)

	id, ok, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "proc-002", id)
}

func TestDequeueTimeout(t *testing.T) {
	q := newTestQueue(t)

	_, ok, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWorkerProcessesQueuedIDs(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var processed []string
	done := make(chan struct{})
	process := func(_ context.Context, processingID string) error {
		mu.Lock()
		defer mu.Unlock()
		processed = append(processed, processingID)
		if len(processed) == 2 {
			close(done)
		}
		return nil
	}

	require.NoError(t, q.Enqueue(ctx, "proc-001"))
	require.NoError(t, q.Enqueue(ctx, "proc-002"))

	worker := NewWorker(q, process, logger.NewTestLogger(t))
	go worker.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain the queue in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"proc-001", "proc-002"}, processed)
}

// A failing job must not stop the worker.
func TestWorkerContinuesAfterProcessError(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	process := func(_ context.Context, processingID string) error {
		if processingID == "proc-bad" {
			return assert.AnError
		}
		close(done)
		return nil
	}

	require.NoError(t, q.Enqueue(ctx, "proc-bad"))
	require.NoError(t, q.Enqueue(ctx, "proc-good"))

	worker := NewWorker(q, process, logger.NewTestLogger(t))
	go worker.Run(ctx)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker stopped after a processing error")
	}
}
