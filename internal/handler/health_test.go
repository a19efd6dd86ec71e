package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stolarpos/internal/handler"
	"stolarpos/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func healthEngine(pingDB, pingRedis handler.PingFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", handler.HealthCheck(pingDB, pingRedis))
	return r
}

func TestHealth_StatusFollowsDatabase(t *testing.T) {
	cases := []struct {
		name      string
		db, redis handler.PingFunc
		code      int
		body      map[string]any
	}{
		{"all up", up, up, http.StatusOK, map[string]any{"ok": true, "db": "connected", "redis": "connected"}},
		{"redis down", up, down, http.StatusOK, map[string]any{"ok": true, "db": "connected", "redis": "degraded"}},
		{"db down", down, up, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "error", "redis": "connected"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			healthEngine(tc.db, tc.redis).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.code, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.body, body)
		})
	}
}

// Devices keep syncing through a redis outage, and hold their queue while the
// database is down.
func TestHealth_DrivesDeviceReachability(t *testing.T) {
	redisDown := httptest.NewServer(healthEngine(up, down))
	defer redisDown.Close()
	dbDown := httptest.NewServer(healthEngine(down, up))
	defer dbDown.Close()

	ctx := context.Background()
	assert.True(t, syncer.NewHTTPProbe(redisDown.URL, time.Second).Reachable(ctx))
	assert.False(t, syncer.NewHTTPProbe(dbDown.URL, time.Second).Reachable(ctx))
}
