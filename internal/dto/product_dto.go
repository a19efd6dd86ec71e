package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Barcode           string          `json:"barcode"           validate:"required,max=64"`
	Name              string          `json:"name"              validate:"required"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"             validate:"min=0"`
	StockQuantity     int             `json:"stockQuantity"     validate:"min=0"`
	LowStockThreshold *int            `json:"lowStockThreshold" validate:"omitempty,min=0"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ProductFilter is bound from the query string of GET /products.
type ProductFilter struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type ProductResponse struct {
	ID                string          `json:"id"`
	Barcode           string          `json:"barcode"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stockQuantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	LowStock          bool            `json:"lowStock"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stockBefore"`
	StockAfter  int     `json:"stockAfter"`
	Reason      string  `json:"reason"`
	SaleID      *string `json:"saleId"`
	CreatedAt   string  `json:"createdAt"`
}
