package repository

import (
	"context"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregate row shapes returned by the report queries.

type DashboardStats struct {
	TodaySalesCount int64
	TodayRevenue    decimal.Decimal
	MonthRevenue    decimal.Decimal
	MonthExpenses   decimal.Decimal
	OutstandingDebt decimal.Decimal
	LowStockCount   int64
}

type DailySales struct {
	Date    string
	Count   int64
	Revenue decimal.Decimal
}

type TopProduct struct {
	ProductID    string
	ProductName  string
	QuantitySold int64
	Revenue      decimal.Decimal
}

type MethodTotal struct {
	Method string
	Count  int64
	Total  decimal.Decimal
}

type CategoryTotal struct {
	Category string
	Count    int64
	Total    decimal.Decimal
}

// ReportRepository issues read-only aggregate queries. It deliberately has no
// write methods: mutation stays with the orchestrating services so invariants
// are enforced in exactly one place.
type ReportRepository interface {
	DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
	SalesByDay(ctx context.Context, from, to string) ([]DailySales, error)
	TopProducts(ctx context.Context, from, to string, limit int) ([]TopProduct, error)
	PaymentMethodBreakdown(ctx context.Context, from, to string) ([]MethodTotal, error)
	ExpensesByCategory(ctx context.Context, from, to string) ([]CategoryTotal, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		TodayRevenue:    decimal.Zero,
		MonthRevenue:    decimal.Zero,
		MonthExpenses:   decimal.Zero,
		OutstandingDebt: decimal.Zero,
	}
	today := now.Format("2006-01-02")
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")

	db := r.db.WithContext(ctx)

	var salesToday struct {
		Count   int64
		Revenue decimal.Decimal
	}
	if err := db.Raw(`
		SELECT COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue
		FROM sales
		WHERE DATE(created_at) = ? AND status <> ?`, today, model.SaleCancelled).
		Scan(&salesToday).Error; err != nil {
		return nil, err
	}
	stats.TodaySalesCount = salesToday.Count
	stats.TodayRevenue = salesToday.Revenue

	if err := db.Raw(`
		SELECT COALESCE(SUM(total), 0)
		FROM sales
		WHERE DATE(created_at) >= ? AND status <> ?`, monthStart, model.SaleCancelled).
		Scan(&stats.MonthRevenue).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE expense_date >= ?`, monthStart).
		Scan(&stats.MonthExpenses).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT COALESCE(SUM(balance), 0)
		FROM debts
		WHERE status <> ?`, model.DebtPaid).
		Scan(&stats.OutstandingDebt).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Product{}).
		Where("stock_quantity <= reorder_level").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *reportRepo) SalesByDay(ctx context.Context, from, to string) ([]DailySales, error) {
	var rows []DailySales
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at)::text AS date,
		       COUNT(*) AS count,
		       COALESCE(SUM(total), 0) AS revenue
		FROM sales
		WHERE DATE(created_at) BETWEEN ? AND ? AND status <> ?
		GROUP BY DATE(created_at)
		ORDER BY date ASC`, from, to, model.SaleCancelled).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to string, limit int) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.db.WithContext(ctx).Raw(`
		SELECT product_id::text AS product_id,
		       product_name,
		       COALESCE(SUM(quantity), 0) AS quantity_sold,
		       COALESCE(SUM(total), 0) AS revenue
		FROM sales
		WHERE DATE(created_at) BETWEEN ? AND ? AND status <> ?
		GROUP BY product_id, product_name
		ORDER BY quantity_sold DESC
		LIMIT ?`, from, to, model.SaleCancelled, limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) PaymentMethodBreakdown(ctx context.Context, from, to string) ([]MethodTotal, error) {
	var rows []MethodTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT payment_method AS method,
		       COUNT(*) AS count,
		       COALESCE(SUM(total), 0) AS total
		FROM sales
		WHERE DATE(created_at) BETWEEN ? AND ? AND status <> ?
		GROUP BY payment_method
		ORDER BY total DESC`, from, to, model.SaleCancelled).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ExpensesByCategory(ctx context.Context, from, to string) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT category,
		       COUNT(*) AS count,
		       COALESCE(SUM(amount), 0) AS total
		FROM expenses
		WHERE expense_date BETWEEN ? AND ?
		GROUP BY category
		ORDER BY total DESC`, from, to).
		Scan(&rows).Error
	return rows, err
}
