package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// DebtFilter is bound from the query string of GET /v1/debts.
type DebtFilter struct {
	Status   string `form:"status,default=all"` // pending | partially_paid | paid | overdue | all
	Customer string `form:"customer"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type DebtListResponse struct {
	Data  []DebtResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateDebtRequest registers a standalone debt (not backed by a sale).
type CreateDebtRequest struct {
	CustomerName  string          `json:"customer_name"  validate:"required,min=2,max=150"`
	CustomerPhone string          `json:"customer_phone" validate:"required,min=7,max=20"`
	Amount        decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	DueDate       string          `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	Notes         string          `json:"notes"          validate:"omitempty,max=500"`
}

// UpdateDebtRequest edits descriptive fields only; amounts are owned by the
// payment ledger and never patched directly.
type UpdateDebtRequest struct {
	CustomerName  *string `json:"customer_name"  validate:"omitempty,min=2,max=150"`
	CustomerPhone *string `json:"customer_phone" validate:"omitempty,min=7,max=20"`
	DueDate       *string `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	Notes         *string `json:"notes"          validate:"omitempty,max=500"`
}

type MakePaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"    validate:"required,gt=0"`
	Method    string          `json:"method"    validate:"required,min=2,max=30"`
	Reference string          `json:"reference" validate:"omitempty,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DebtResponse struct {
	ID            string          `json:"id"`
	SaleID        *string         `json:"sale_id,omitempty"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	// Overdue is derived at read time from due_date; it is never stored.
	Overdue   bool                  `json:"overdue"`
	DueDate   *string               `json:"due_date,omitempty"`
	Notes     *string               `json:"notes,omitempty"`
	Payments  []DebtPaymentResponse `json:"payments,omitempty"`
	CreatedAt string                `json:"created_at"`
	UpdatedAt string                `json:"updated_at"`
}

type DebtPaymentResponse struct {
	ID        string          `json:"id"`
	DebtID    string          `json:"debt_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt string          `json:"created_at"`
}
