package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stolarpos/internal/infra"
	"stolarpos/internal/offline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingSale() offline.PendingSale {
	return offline.PendingSale{
		OfflineID: "1700000000000-abc",
		CreatedAt: "2023-11-14T22:13:20.000Z",
		Fields: map[string]json.RawMessage{
			"items": json.RawMessage(`[{"barcode":"123","quantity":2}]`),
			"total": json.RawMessage(`10`),
		},
	}
}

func TestHTTPSubmitter_PostsFlatSale(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CreateSalePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := NewHTTPSubmitter(srv.URL+"/", 0, nil).Submit(context.Background(), pendingSale())

	require.NoError(t, err)
	assert.Equal(t, "1700000000000-abc", got["offlineId"])
	assert.Equal(t, false, got["synced"])
	assert.EqualValues(t, 10, got["total"])
	assert.Len(t, got["items"], 1)
}

func TestHTTPSubmitter_NonSuccessStatusIsRejection(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError, http.StatusMovedPermanently} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"success":false,"message":"nope"}`))
		}))
		err := NewHTTPSubmitter(srv.URL, 0, nil).Submit(context.Background(), pendingSale())
		srv.Close()
		assert.ErrorIs(t, err, ErrRejected, "status %d", status)
	}
}

func TestHTTPSubmitter_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPSubmitter(url, time.Second, nil).Submit(context.Background(), pendingSale())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestHTTPSubmitter_BreakerShortCircuits(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "test", FailureThreshold: 2, OpenTimeout: time.Hour})
	sub := NewHTTPSubmitter(srv.URL, 0, cb)

	assert.ErrorIs(t, sub.Submit(context.Background(), pendingSale()), ErrRejected)
	assert.ErrorIs(t, sub.Submit(context.Background(), pendingSale()), ErrRejected)
	assert.ErrorIs(t, sub.Submit(context.Background(), pendingSale()), infra.ErrCircuitOpen)
	assert.EqualValues(t, 2, hits.Load())
}

func TestHTTPProbe(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, HealthPath, r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	probe := NewHTTPProbe(srv.URL, time.Second)

	assert.True(t, probe.Reachable(context.Background()))
	status.Store(http.StatusNotFound)
	assert.True(t, probe.Reachable(context.Background()))
	status.Store(http.StatusServiceUnavailable)
	assert.False(t, probe.Reachable(context.Background()))

	srv.Close()
	assert.False(t, probe.Reachable(context.Background()))
}
