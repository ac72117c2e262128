package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the till.
const (
	PaymentCash        = "cash"
	PaymentMobileMoney = "mobile_money"
	PaymentDebt        = "debt"
)

// Sale statuses.
const (
	SaleCompleted = "completed"
	SalePending   = "pending"
	SaleCancelled = "cancelled"
)

// Sale records a single point-of-sale transaction.
// ProductName and UnitPrice are captured at sale time so the record stays
// historically accurate even if the product is later renamed or repriced.
// Total is always computed server-side as Quantity × UnitPrice.
type Sale struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName string    `gorm:"not null"`
	Quantity    int       `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PaymentMethod: "cash" | "mobile_money" | "debt"
	PaymentMethod string `gorm:"type:varchar(20);not null"`
	// Customer fields are only required when PaymentMethod is "debt".
	CustomerName  *string
	CustomerPhone *string
	Status        string `gorm:"type:varchar(20);not null;default:'completed'"`
	// PaymentReference holds an external code (e.g. mobile money confirmation).
	PaymentReference *string
	Notes            *string
	// RecordedBy is the authenticated user that registered the sale (audit field).
	RecordedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
