package service

import (
	"context"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/cache"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// ReportService serves the read-only aggregates behind the dashboard and
// report pages. It owns the stats cache; mutation services invalidate it.
type ReportService interface {
	DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	SalesSummary(ctx context.Context, rng dto.ReportRange) ([]dto.DailySalesEntry, error)
	TopProducts(ctx context.Context, rng dto.ReportRange) ([]dto.TopProductEntry, error)
	PaymentMethodBreakdown(ctx context.Context, rng dto.ReportRange) ([]dto.PaymentMethodEntry, error)
	ExpenseBreakdown(ctx context.Context, rng dto.ReportRange) ([]dto.ExpenseCategoryEntry, error)
}

type reportService struct {
	repo  repository.ReportRepository
	stats cache.StatsCache
	ttl   time.Duration
	now   func() time.Time
}

func NewReportService(repo repository.ReportRepository, stats cache.StatsCache, ttl time.Duration) ReportService {
	return NewReportServiceWithClock(repo, stats, ttl, time.Now)
}

func NewReportServiceWithClock(repo repository.ReportRepository, stats cache.StatsCache, ttl time.Duration, now func() time.Time) ReportService {
	if stats == nil {
		stats = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &reportService{repo: repo, stats: stats, ttl: ttl, now: now}
}

// DashboardStats serves from the cache when possible. Cache failures are
// logged and ignored: the dashboard always falls back to a live query.
func (s *reportService) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	var cached dto.DashboardStatsResponse
	hit, err := s.stats.Get(ctx, cache.DashboardStatsKey, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("stats cache read failed")
	}
	if hit {
		return &cached, nil
	}

	raw, err := s.repo.DashboardStats(ctx, s.now())
	if err != nil {
		return nil, err
	}
	resp := &dto.DashboardStatsResponse{
		TodaySalesCount: raw.TodaySalesCount,
		TodayRevenue:    raw.TodayRevenue,
		MonthRevenue:    raw.MonthRevenue,
		MonthExpenses:   raw.MonthExpenses,
		OutstandingDebt: raw.OutstandingDebt,
		LowStockCount:   raw.LowStockCount,
	}

	if err := s.stats.Set(ctx, cache.DashboardStatsKey, resp, s.ttl); err != nil {
		log.Warn().Err(err).Msg("stats cache write failed")
	}
	return resp, nil
}

// normalize fills the default window: the last 30 days up to today.
func (s *reportService) normalize(rng dto.ReportRange) (string, string) {
	now := s.now()
	to := rng.To
	if to == "" {
		to = now.Format("2006-01-02")
	}
	from := rng.From
	if from == "" {
		from = now.AddDate(0, 0, -30).Format("2006-01-02")
	}
	return from, to
}

func (s *reportService) SalesSummary(ctx context.Context, rng dto.ReportRange) ([]dto.DailySalesEntry, error) {
	from, to := s.normalize(rng)
	rows, err := s.repo.SalesByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DailySalesEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DailySalesEntry{Date: r.Date, Count: r.Count, Revenue: r.Revenue})
	}
	return out, nil
}

func (s *reportService) TopProducts(ctx context.Context, rng dto.ReportRange) ([]dto.TopProductEntry, error) {
	from, to := s.normalize(rng)
	limit := rng.Limit
	if limit < 1 {
		limit = 10
	}
	rows, err := s.repo.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductEntry{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			QuantitySold: r.QuantitySold,
			Revenue:      r.Revenue,
		})
	}
	return out, nil
}

func (s *reportService) PaymentMethodBreakdown(ctx context.Context, rng dto.ReportRange) ([]dto.PaymentMethodEntry, error) {
	from, to := s.normalize(rng)
	rows, err := s.repo.PaymentMethodBreakdown(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentMethodEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PaymentMethodEntry{Method: r.Method, Count: r.Count, Total: r.Total})
	}
	return out, nil
}

func (s *reportService) ExpenseBreakdown(ctx context.Context, rng dto.ReportRange) ([]dto.ExpenseCategoryEntry, error) {
	from, to := s.normalize(rng)
	rows, err := s.repo.ExpensesByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpenseCategoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpenseCategoryEntry{Category: r.Category, Count: r.Count, Total: r.Total})
	}
	return out, nil
}
