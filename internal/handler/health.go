package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PingFunc reports whether one dependency answers.
type PingFunc func(ctx context.Context) error

// Health reports database and redis connectivity. Device clients probe this
// route to decide whether to sync, so only the database decides the status
// code: sale ingestion needs postgres alone, while redis backs the barcode
// cache and receipt jobs, which degrade without failing a sale.
//
// @Summary  Service health
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]any
// @Failure  503 {object} map[string]any
// @Router   /health [get]
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return HealthCheck(
		func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	)
}

// HealthCheck builds the health handler from the two dependency checks.
func HealthCheck(pingDB, pingRedis PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status, dbStatus := http.StatusOK, "connected"
		if pingDB(ctx) != nil {
			status, dbStatus = http.StatusServiceUnavailable, "error"
		}
		redisStatus := "connected"
		if pingRedis(ctx) != nil {
			redisStatus = "degraded"
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
