package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale status values.
const (
	SaleStatusCompleted = "completed"
	SaleStatusRefunded  = "refunded"
)

// DefaultPaymentMethod is applied when a sale arrives without one.
const DefaultPaymentMethod = "Cash"

// Sale is a completed checkout transaction.
// Total is stored as sent by the device; it is not recomputed from Items.
type Sale struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// OfflineID is set when the sale was queued on a device while offline.
	// Unique so a replayed submission resolves to the sale already stored.
	OfflineID       *string         `gorm:"type:varchar(64);uniqueIndex"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `gorm:"type:varchar(40);not null;default:'Cash'"`
	Date            time.Time       `gorm:"index;not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'completed'"`
	CustomerEmail   *string
	ClientCreatedAt *string `gorm:"type:varchar(40)"` // device timestamp of an offline sale
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// ItemCount returns the total number of units sold.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// SaleItem is one line of a Sale, denormalized from the product at checkout time.
type SaleItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductRef string          `gorm:"type:varchar(64)"` // item id as sent by the device
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity   int             `gorm:"not null"`
	Barcode    string          `gorm:"type:varchar(64);index"`
}

// Subtotal is Price × Quantity.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
