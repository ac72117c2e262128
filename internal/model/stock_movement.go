package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement types.
const (
	MovementSale         = "sale"
	MovementSaleReversal = "sale_reversal"
	MovementSaleUpdate   = "sale_update"
	MovementAdjustment   = "manual_adjustment"
)

// StockMovement records every change to a product's on-hand quantity.
// Created automatically on sale, sale deletion/update and manual adjustment.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"not null"`
	// Quantity is signed: positive = stock in, negative = stock out.
	Quantity    int `gorm:"not null"`
	StockBefore int `gorm:"not null"`
	StockAfter  int `gorm:"not null"`
	Reason      string
	SaleID      *uuid.UUID `gorm:"type:uuid"`
	RecordedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
