package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a business cost entry (rent, transport, restocking).
type Expense struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string    `gorm:"not null"`
	Category    string    `gorm:"not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ExpenseDate is the day the cost was incurred, not when it was entered.
	ExpenseDate time.Time  `gorm:"not null;index"`
	RecordedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
