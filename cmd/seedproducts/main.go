// Command seedproducts creates demo products so tills have barcodes to sell.
// Usage: go run ./cmd/seedproducts
package main

import (
	"context"
	"fmt"

	"stolarpos/internal/config"
	"stolarpos/internal/infra"
	"stolarpos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

var demoProducts = []model.Product{
	{Barcode: "123", Name: "Hand soap", Category: "household", Price: decimal.RequireFromString("5.00"), StockQuantity: 5, LowStockThreshold: 2},
	{Barcode: "7790001000012", Name: "Black tea 100g", Category: "grocery", Price: decimal.RequireFromString("3.20"), StockQuantity: 40, LowStockThreshold: 5},
	{Barcode: "7790001000029", Name: "Wholewheat bread", Category: "bakery", Price: decimal.RequireFromString("2.50"), StockQuantity: 12, LowStockThreshold: 4},
	{Barcode: "7790001000036", Name: "Beeswax candle", Category: "household", Price: decimal.RequireFromString("1.00"), StockQuantity: 3, LowStockThreshold: 5},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.ConfigureLogger(cfg.IsProduction())

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	result := db.WithContext(context.Background()).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "barcode"}}, DoNothing: true}).
		Create(&demoProducts)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert failed")
	}
	fmt.Printf("seeded %d of %d demo products\n", result.RowsAffected, len(demoProducts))
}
