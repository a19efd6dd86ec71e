package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds.
const (
	MovementSale       = "sale"
	MovementRefund     = "refund"
	MovementAdjustment = "adjustment"
)

// StockMovement records every change to a product's stock.
// Created on sale ingestion, refund, and manual adjustment.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind        string     `gorm:"type:varchar(20);not null"`
	Quantity    int        `gorm:"not null"` // requested change; positive = in, negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	SaleID      *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Applied is the change that actually hit the stock after clamping at zero.
func (m StockMovement) Applied() int { return m.StockAfter - m.StockBefore }
