package syncer_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"stolarpos/internal/config"
	"stolarpos/internal/handler"
	"stolarpos/internal/infra"
	"stolarpos/internal/offline"
	"stolarpos/internal/repository/repotest"
	"stolarpos/internal/router"
	"stolarpos/internal/service"
	"stolarpos/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer starts the real sale and product routes over in-memory repositories.
func newServer(t *testing.T) (*httptest.Server, *repotest.ProductRepo, *repotest.SaleRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sales := repotest.NewSaleRepo()
	products := repotest.NewProductRepo()
	movements := &repotest.MovementRepo{}

	engine := router.NewEngine(&config.Config{Env: "test"})
	router.Mount(engine,
		handler.NewSalesHandler(service.NewSaleService(sales, products, movements, nil, nil, "Test Shop", t.TempDir())),
		handler.NewProductsHandler(service.NewProductService(products, movements, nil)))
	engine.GET(syncer.HealthPath, func(c *gin.Context) { c.Status(200) })

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, products, sales
}

func TestOfflineSaleReachesServerAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	srv, products, sales := newServer(t)
	products.Seed("123", "Soap", 5)

	buf := offline.NewBuffer(offline.NewMemoryStorage())
	require.True(t, buf.SaveSaleLocally(ctx, map[string]any{
		"items": []any{map[string]any{"barcode": "123", "quantity": 2}},
		"total": 10.00,
	}))

	r := syncer.New(buf,
		syncer.NewHTTPProbe(srv.URL, time.Second),
		syncer.NewHTTPSubmitter(srv.URL, 5*time.Second, infra.NewCircuitBreaker(infra.DefaultCBConfig())))
	r.SyncWithServer(ctx)

	assert.Equal(t, 0, buf.QueueCount(ctx))
	assert.Equal(t, 3, products.Stock("123"))
	assert.Len(t, sales.Sales, 1)
}

func TestOversoldOfflineSaleClampsStock(t *testing.T) {
	ctx := context.Background()
	srv, products, _ := newServer(t)
	products.Seed("777", "Candles", 3)

	buf := offline.NewBuffer(offline.NewMemoryStorage())
	require.True(t, buf.SaveSaleLocally(ctx, map[string]any{
		"items": []any{map[string]any{"barcode": "777", "quantity": 10, "price": 1}},
		"total": 10,
	}))

	syncer.New(buf, syncer.StaticReachability(true), syncer.NewHTTPSubmitter(srv.URL, 0, nil)).SyncWithServer(ctx)

	assert.Equal(t, 0, buf.QueueCount(ctx))
	assert.Equal(t, 0, products.Stock("777"))
}

func TestInvalidQueuedSaleBlocksQueueButIsKept(t *testing.T) {
	ctx := context.Background()
	srv, products, sales := newServer(t)
	products.Seed("123", "Soap", 5)

	buf := offline.NewBuffer(offline.NewMemoryStorage())
	require.True(t, buf.SaveSaleLocally(ctx, map[string]any{"items": []any{}, "total": 0}))
	require.True(t, buf.SaveSaleLocally(ctx, map[string]any{
		"items": []any{map[string]any{"barcode": "123", "quantity": 1}},
		"total": 5,
	}))

	syncer.New(buf, syncer.StaticReachability(true), syncer.NewHTTPSubmitter(srv.URL, 0, nil)).SyncWithServer(ctx)

	assert.Equal(t, 2, buf.QueueCount(ctx))
	assert.Equal(t, 5, products.Stock("123"))
	assert.Empty(t, sales.Sales)
}
