package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	From          string `form:"from"` // YYYY-MM-DD; empty = today
	To            string `form:"to"`   // YYYY-MM-DD; empty = From
	Status        string `form:"status,default=all"`
	PaymentMethod string `form:"payment_method"`
	ProductID     string `form:"product_id" validate:"omitempty,uuid"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateSaleRequest deliberately has no total field: the server always
// computes quantity × unit_price and ignores anything the client derived.
type CreateSaleRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// UnitPrice overrides the catalog price when set (e.g. a negotiated
	// discount); zero/absent means "charge the catalog price".
	UnitPrice     decimal.Decimal `json:"unit_price"     validate:"omitempty,gt=0"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash mobile_money debt"`
	CustomerName  string          `json:"customer_name"  validate:"required_if=PaymentMethod debt,omitempty,min=2,max=150"`
	CustomerPhone string          `json:"customer_phone" validate:"required_if=PaymentMethod debt,omitempty,min=7,max=20"`
	// DueDate (YYYY-MM-DD) only applies to debt sales.
	DueDate          string `json:"due_date"          validate:"omitempty,datetime=2006-01-02"`
	PaymentReference string `json:"payment_reference" validate:"omitempty,max=100"`
	Notes            string `json:"notes"             validate:"omitempty,max=500"`
}

type UpdateSaleRequest struct {
	ProductID     string           `json:"product_id"     validate:"omitempty,uuid"`
	Quantity      *int             `json:"quantity"       validate:"omitempty,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price"     validate:"omitempty,gt=0"`
	Status        string           `json:"status"         validate:"omitempty,oneof=completed pending cancelled"`
	CustomerName  *string          `json:"customer_name"  validate:"omitempty,min=2,max=150"`
	CustomerPhone *string          `json:"customer_phone" validate:"omitempty,min=7,max=20"`
	Notes         *string          `json:"notes"          validate:"omitempty,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Total            decimal.Decimal `json:"total"`
	PaymentMethod    string          `json:"payment_method"`
	CustomerName     *string         `json:"customer_name,omitempty"`
	CustomerPhone    *string         `json:"customer_phone,omitempty"`
	Status           string          `json:"status"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
	// DebtID is set when the sale created a linked debt.
	DebtID    *string `json:"debt_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}
