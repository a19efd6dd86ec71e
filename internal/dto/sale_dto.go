package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Device clients send and expect plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"    validate:"min=0"`
	Quantity int             `json:"quantity" validate:"required,min=1"`
	Barcode  string          `json:"barcode"`
}

// CreateSaleRequest is the body of POST /sales and POST /sales/create.
// OfflineID, CreatedAt and Synced are present when the sale is replayed from a
// device's offline queue.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items"         validate:"required,min=1,dive"`
	Total         decimal.Decimal   `json:"total"         validate:"min=0"`
	PaymentMethod string            `json:"paymentMethod"`
	Date          *time.Time        `json:"date"`
	OfflineID     *string           `json:"offlineId"     validate:"omitempty,max=64"`
	CreatedAt     *string           `json:"createdAt"`
	Synced        *bool             `json:"synced"`
	CustomerEmail *string           `json:"customerEmail" validate:"omitempty,email"`
}

// RecentSalesQuery is bound from the query string of GET /sales/recent.
type RecentSalesQuery struct {
	Limit int `form:"limit,default=10" validate:"min=1,max=200"`
	Page  int `form:"page,default=1"   validate:"min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Barcode  string          `json:"barcode"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Items         []SaleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	Date          time.Time          `json:"date"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// CreateSaleResponse is the success envelope of the ingestion endpoint.
type CreateSaleResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Sale    *SaleResponse `json:"sale"`
}

// RecentSale is one row of GET /sales/recent.
type RecentSale struct {
	ID     string          `json:"id"`
	Time   string          `json:"time"`   // HH:MM, server-local
	Total  decimal.Decimal `json:"total"`
	Items  int             `json:"items"`  // units sold
	Amount string          `json:"amount"` // total formatted with 2 decimals
	Status string          `json:"status"`
}

// SalesSummary is the whole-day report of GET /sales/summary/:date.
type SalesSummary struct {
	TotalSales           decimal.Decimal `json:"totalSales"`
	NumberOfTransactions int             `json:"numberOfTransactions"`
	Transactions         []SaleResponse  `json:"transactions"`
}
