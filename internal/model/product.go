package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stock-keeping unit of a shop, resolved from sale lines by Barcode.
// StockQuantity never goes below zero.
type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode           string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name              string          `gorm:"index;not null"`
	Category          string          `gorm:"not null;default:'general'"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQuantity     int             `gorm:"not null;default:0"`
	LowStockThreshold int             `gorm:"not null;default:5"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock reports whether stock is at or below the product's threshold.
func (p *Product) IsLowStock() bool { return p.StockQuantity <= p.LowStockThreshold }
