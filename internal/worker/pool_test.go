package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyHandler struct {
	failures int
	calls    int
	payloads []json.RawMessage
}

func (h *flakyHandler) Process(_ context.Context, payload json.RawMessage) error {
	h.calls++
	h.payloads = append(h.payloads, payload)
	if h.calls <= h.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = prev })
}

func encodedReceiptJob(t *testing.T) string {
	t.Helper()
	b, err := encodeJob(JobReceipt, ReceiptJobPayload{SaleID: "s-1", CustomerEmail: "a@b.co"})
	require.NoError(t, err)
	return string(b)
}

func TestRunJob_RetriesUntilSuccess(t *testing.T) {
	fastRetries(t)
	h := &flakyHandler{failures: 2}

	jobType, attempts, err := runJob(context.Background(), &Handlers{Receipt: h}, encodedReceiptJob(t))

	require.NoError(t, err)
	assert.Equal(t, JobReceipt, jobType)
	assert.Equal(t, 3, attempts)

	var p ReceiptJobPayload
	require.NoError(t, json.Unmarshal(h.payloads[0], &p))
	assert.Equal(t, "s-1", p.SaleID)
}

func TestRunJob_ExhaustsAttempts(t *testing.T) {
	fastRetries(t)
	h := &flakyHandler{failures: 10}

	_, attempts, err := runJob(context.Background(), &Handlers{Receipt: h}, encodedReceiptJob(t))

	assert.Error(t, err)
	assert.Equal(t, MaxJobAttempts, attempts)
	assert.Equal(t, MaxJobAttempts, h.calls)
}

func TestRunJob_UnknownType(t *testing.T) {
	raw, err := encodeJob("invoice", map[string]string{"x": "y"})
	require.NoError(t, err)

	_, _, err = runJob(context.Background(), &Handlers{}, string(raw))
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRunJob_InvalidEnvelope(t *testing.T) {
	_, _, err := runJob(context.Background(), &Handlers{}, "{not json")
	assert.Error(t, err)
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	fastRetries(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, 3, func(int) error { calls++; return errors.New("fail") })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

// commandCounter counts commands sent through a redis client.
type commandCounter struct{ n atomic.Int32 }

func (h *commandCounter) DialHook(next redis.DialHook) redis.DialHook { return next }
func (h *commandCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.n.Add(1)
		return next(ctx, cmd)
	}
}
func (h *commandCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRunWorker_BacksOffWhileRedisIsDown(t *testing.T) {
	prev := popErrorDelay
	popErrorDelay = 100 * time.Millisecond
	t.Cleanup(func() { popErrorDelay = prev })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	rdb := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()
	counter := &commandCounter{}
	rdb.AddHook(counter)

	ctx, cancel := context.WithTimeout(context.Background(), 350*time.Millisecond)
	defer cancel()
	runWorker(ctx, rdb, &Handlers{Receipt: &flakyHandler{}}, 0)

	pops := counter.n.Load()
	assert.GreaterOrEqual(t, pops, int32(1))
	assert.LessOrEqual(t, pops, int32(6), "worker retried BRPOP without waiting")
}
