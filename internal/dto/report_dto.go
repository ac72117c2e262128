package dto

import "github.com/shopspring/decimal"

// DashboardStatsResponse is the cached summary behind the dashboard header.
type DashboardStatsResponse struct {
	TodaySalesCount int64           `json:"today_sales_count"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	MonthRevenue    decimal.Decimal `json:"month_revenue"`
	MonthExpenses   decimal.Decimal `json:"month_expenses"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	LowStockCount   int64           `json:"low_stock_count"`
}

// ReportRange is bound from the query string of the report endpoints.
type ReportRange struct {
	From  string `form:"from"  validate:"omitempty,datetime=2006-01-02"`
	To    string `form:"to"    validate:"omitempty,datetime=2006-01-02"`
	Limit int    `form:"limit,default=10" validate:"min=1,max=100"`
}

type DailySalesEntry struct {
	Date    string          `json:"date"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProductEntry struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type PaymentMethodEntry struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type ExpenseCategoryEntry struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}
