package service

import (
	"context"
	"encoding/json"
	"time"

	"stolarpos/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productCacheTTL = 4 * time.Hour

// productCache keeps barcode lookups in Redis. A nil client disables it, and
// every Redis failure is treated as a miss.
type productCache struct {
	rdb *redis.Client
}

func productCacheKey(barcode string) string { return "product:" + barcode }

func (c productCache) get(ctx context.Context, barcode string) (*dto.ProductResponse, bool) {
	if c.rdb == nil {
		return nil, false
	}
	cached, err := c.rdb.Get(ctx, productCacheKey(barcode)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal(cached, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c productCache) set(resp *dto.ProductResponse) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	// Detached from the request so a client disconnect does not skip the write.
	if err := c.rdb.Set(context.Background(), productCacheKey(resp.Barcode), b, productCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("barcode", resp.Barcode).Msg("product cache: set failed")
	}
}

// invalidate drops cached lookups after stock or price changes.
func (c productCache) invalidate(ctx context.Context, barcodes ...string) {
	if c.rdb == nil || len(barcodes) == 0 {
		return
	}
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		keys = append(keys, productCacheKey(b))
	}
	if err := c.rdb.Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("barcodes", barcodes).Msg("product cache: invalidate failed")
	}
}
