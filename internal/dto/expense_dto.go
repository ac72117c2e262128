package dto

import "github.com/shopspring/decimal"

// ExpenseFilter is bound from the query string of GET /v1/expenses.
type ExpenseFilter struct {
	From     string `form:"from"` // YYYY-MM-DD
	To       string `form:"to"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ExpenseListResponse struct {
	Data  []ExpenseResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type CreateExpenseRequest struct {
	Description string          `json:"description"  validate:"required,min=2,max=300"`
	Category    string          `json:"category"     validate:"required,min=1,max=100"`
	Amount      decimal.Decimal `json:"amount"       validate:"required,gt=0"`
	ExpenseDate string          `json:"expense_date" validate:"required,datetime=2006-01-02"`
}

type UpdateExpenseRequest struct {
	Description *string          `json:"description"  validate:"omitempty,min=2,max=300"`
	Category    *string          `json:"category"     validate:"omitempty,min=1,max=100"`
	Amount      *decimal.Decimal `json:"amount"       validate:"omitempty,gt=0"`
	ExpenseDate *string          `json:"expense_date" validate:"omitempty,datetime=2006-01-02"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"`
	CreatedAt   string          `json:"created_at"`
}
