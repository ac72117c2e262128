package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtPayment is one immutable ledger entry against a debt. Rows are only
// ever inserted, never updated or deleted while the debt exists, so the
// ledger stays an auditable history independent of the aggregate fields on
// Debt. At all times sum(payments.amount) == debt.amount_paid.
type DebtPayment struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DebtID uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Method is a free-form tag: cash, mobile_money, bank.
	Method string `gorm:"type:varchar(30);not null"`
	// Reference holds an external confirmation code if one exists.
	Reference  *string
	RecordedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time

	Debt *Debt `gorm:"foreignKey:DebtID"`
}

// TableName overrides GORM's default pluralization.
func (DebtPayment) TableName() string { return "debt_payments" }
