package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipts = "jobs:receipts"

	JobReceipt = "receipt"

	// MaxJobAttempts is how many times a job handler runs before the job
	// is moved to the dead letter queue.
	MaxJobAttempts = 3
)

// retryBaseDelay is the first backoff step between attempts (1s, 2s, …).
var retryBaseDelay = time.Second

// popErrorDelay is how long a worker waits after BRPOP fails for a reason
// other than an empty queue, typically redis being unreachable.
var popErrorDelay = 2 * time.Second

// ErrUnknownJob is returned for job types with no registered handler.
var ErrUnknownJob = errors.New("worker: unknown job type")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one job payload. A returned error triggers a retry.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Handlers maps job types to their handlers; nil handlers are skipped.
type Handlers struct {
	Receipt JobHandler
}

func (h *Handlers) forType(jobType string) JobHandler {
	switch jobType {
	case JobReceipt:
		return h.Receipt
	}
	return nil
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipts, JobReceipt, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("worker: marshal payload: %w", err)
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueReceipts).Result()
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue // empty queue or shutting down
			}
			if err != nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: queue pop failed, backing off")
				select {
				case <-ctx.Done():
				case <-time.After(popErrorDelay):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			queue, raw := result[0], result[1]
			if jobType, attempts, err := runJob(ctx, handlers, raw); err != nil {
				SendToDLQ(ctx, rdb, queue, jobType, []byte(raw), err.Error(), attempts)
			}
		}
	}
}

// runJob decodes and runs one job with retries. On failure it returns the job
// type, the number of attempts made and the last error.
func runJob(ctx context.Context, handlers *Handlers, raw string) (string, int, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("worker: failed to unmarshal job")
		return "", 0, fmt.Errorf("worker: unmarshal job: %w", err)
	}

	h := handlers.forType(job.Type)
	if h == nil {
		log.Warn().Str("type", job.Type).Msg("worker: no handler for job")
		return job.Type, 0, fmt.Errorf("%w: %q", ErrUnknownJob, job.Type)
	}

	attempts := 0
	err := withRetry(ctx, MaxJobAttempts, func(attempt int) error {
		attempts = attempt + 1
		return h.Process(ctx, job.Payload)
	})
	if err != nil {
		log.Error().Err(err).Str("type", job.Type).Int("attempts", attempts).Msg("worker: job failed")
		return job.Type, attempts, err
	}
	log.Info().Str("type", job.Type).Int("attempts", attempts).Msg("worker: job done")
	return job.Type, attempts, nil
}

// withRetry runs fn up to maxAttempts times with exponential backoff.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBaseDelay * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
