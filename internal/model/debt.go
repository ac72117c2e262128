package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stored debt statuses. "overdue" is deliberately absent: it is derived at
// read time from DueDate and never persisted, so a late debt can still
// receive payments.
const (
	DebtPending       = "pending"
	DebtPartiallyPaid = "partially_paid"
	DebtPaid          = "paid"
)

// Debt is money a customer owes the store, either created standalone or
// automatically by a sale whose payment method is "debt".
// Invariant: Balance = max(0, Amount - AmountPaid).
type Debt struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// SaleID links back to the originating sale; nil for standalone debts.
	SaleID       *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName string     `gorm:"not null;index"`
	CustomerPhone *string
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Balance    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending'"`
	DueDate    *time.Time
	Notes      *string
	RecordedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Payments []DebtPayment `gorm:"foreignKey:DebtID;constraint:OnDelete:CASCADE"`
}

// Overdue reports whether the debt is past due and not fully paid, relative
// to the supplied instant. Derived state only, never written back.
func (d *Debt) Overdue(now time.Time) bool {
	return d.Status != DebtPaid && d.DueDate != nil && d.DueDate.Before(now)
}
