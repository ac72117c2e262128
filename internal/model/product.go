package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item with its current on-hand stock.
// StockQuantity is only ever mutated inside the same transaction as the
// sale/adjustment that caused the change, and never goes below zero.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"index;not null"`
	Category     string    `gorm:"not null;default:'general'"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity int            `gorm:"not null;default:0"`
	// ReorderLevel is the threshold at or below which the product shows up
	// in low-stock alerts.
	ReorderLevel int `gorm:"not null;default:5"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
