// Package queue is the deferred-processing path: uploads enqueue their
// processing IDs, a worker pool consumes them. A queued upload produces
// exactly the same scorecard as a synchronous one.
package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/falkivanov/cloudcraft-express/internal/common/logger"
	"github.com/falkivanov/cloudcraft-express/internal/common/metrics"
)

// Queue is a redis-backed FIFO of processing IDs (LPUSH in, BRPOP out).
type Queue struct {
	client *redis.Client
	name   string
}

func New(client *redis.Client, name string) *Queue {
	return &Queue{client: client, name: name}
}

// Enqueue appends a processing ID.
func (q *Queue) Enqueue(ctx context.Context, processingID string) error {
	if err := q.client.LPush(ctx, q.name, processingID).Err(); err != nil {
		return err
	}
	if depth, err := q.client.LLen(ctx, q.name).Result(); err == nil {
		metrics.QueueDepth.Set(float64(depth))
	}
	return nil
}

// Dequeue blocks up to timeout for the next processing ID. The second
// return is false when the timeout elapsed with an empty queue.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, bool, error) {
	res, err := q.client.BRPop(ctx, timeout, q.name).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// BRPOP returns [key, value].
	if depth, err := q.client.LLen(ctx, q.name).Result(); err == nil {
		metrics.QueueDepth.Set(float64(depth))
	}
	return res[1], true, nil
}

// Depth reports the number of waiting jobs.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

// ProcessFunc handles one dequeued processing ID.
type ProcessFunc func(ctx context.Context, processingID string) error

// Worker drains the queue until its context is cancelled. Processing errors
// are logged and the loop continues; the job row already carries the
// failure for the status endpoint.
type Worker struct {
	queue   *Queue
	process ProcessFunc
	logger  logger.Logger
}

func NewWorker(q *Queue, process ProcessFunc, log logger.Logger) *Worker {
	return &Worker{
		queue:   q,
		process: process,
		logger:  log.WithFields(map[string]interface{}{"component": "queue-worker"}),
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", nil)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped", nil)
			return
		default:
		}

		processingID, ok, err := w.queue.Dequeue(ctx, 2*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopped", nil)
				return
			}
			w.logger.Error("dequeue failed", map[string]interface{}{"error": err.Error()})
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		if err := w.process(ctx, processingID); err != nil {
			w.logger.Error("processing failed", map[string]interface{}{
				"processingId": processingID,
				"error":        err.Error(),
			})
		}
	}
}
