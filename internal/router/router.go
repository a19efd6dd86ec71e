package router

import (
	"time"

	_ "stolarpos/docs" // registers the swagger document

	"stolarpos/internal/config"
	"stolarpos/internal/handler"
	"stolarpos/internal/middleware"
	"stolarpos/internal/repository"
	"stolarpos/internal/service"
	"stolarpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	r := NewEngine(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	saleRepo := repository.NewSaleRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	saleSvc := service.NewSaleService(saleRepo, productRepo, movementRepo, rdb, dispatcher, cfg.ShopName, cfg.ReceiptStoragePath)
	productSvc := service.NewProductService(productRepo, movementRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))
	Mount(r, handler.NewSalesHandler(saleSvc), handler.NewProductsHandler(productSvc))

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

// NewEngine returns a Gin engine with the global middleware chain installed.
func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}
	return r
}

// Mount registers the sale and product routes.
func Mount(r gin.IRoutes, sales *handler.SalesHandler, products *handler.ProductsHandler) {
	// POST /sales and POST /sales/create are the same operation; devices use
	// the latter when replaying their offline queue.
	r.POST("/sales", sales.Create)
	r.POST("/sales/create", sales.Create)
	r.GET("/sales", sales.List)
	r.GET("/sales/recent", sales.Recent)
	r.GET("/sales/summary/:date", sales.Summary)
	r.GET("/sales/:id", sales.Get)
	r.POST("/sales/:id/refund", sales.Refund)
	r.GET("/sales/:id/receipt", sales.Receipt)

	r.POST("/products", products.Create)
	r.GET("/products", products.List)
	r.GET("/products/low-stock", products.LowStock)
	r.GET("/products/barcode/:barcode", products.GetByBarcode)
	r.PATCH("/products/:id/stock", products.AdjustStock)
	r.GET("/products/:id/movements", products.Movements)
}
