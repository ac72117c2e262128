package service

import (
	"context"
	"errors"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/cache"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/domain"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DebtService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateDebtRequest) (*dto.DebtResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.DebtResponse, error)
	List(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateDebtRequest) (*dto.DebtResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	MakePayment(ctx context.Context, userID uuid.UUID, debtID uuid.UUID, req dto.MakePaymentRequest) (*dto.DebtResponse, error)
	ListPayments(ctx context.Context, debtID uuid.UUID) ([]dto.DebtPaymentResponse, error)
}

type debtService struct {
	repo  repository.DebtRepository
	stats cache.StatsCache
	// now is injected so the derived overdue flag is testable.
	now func() time.Time
}

func NewDebtService(repo repository.DebtRepository, stats cache.StatsCache) DebtService {
	return NewDebtServiceWithClock(repo, stats, time.Now)
}

func NewDebtServiceWithClock(repo repository.DebtRepository, stats cache.StatsCache, now func() time.Time) DebtService {
	if stats == nil {
		stats = cache.Noop{}
	}
	return &debtService{repo: repo, stats: stats, now: now}
}

func (s *debtService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateDebtRequest) (*dto.DebtResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.InvalidAmount("debt amount must be positive")
	}
	var recordedBy *uuid.UUID
	if userID != uuid.Nil {
		recordedBy = &userID
	}
	debt := &model.Debt{
		CustomerName:  req.CustomerName,
		CustomerPhone: optional(req.CustomerPhone),
		Amount:        req.Amount,
		AmountPaid:    decimal.Zero,
		Balance:       req.Amount,
		Status:        model.DebtPending,
		DueDate:       parseDate(req.DueDate),
		Notes:         optional(req.Notes),
		RecordedBy:    recordedBy,
	}
	if err := s.repo.Create(ctx, debt); err != nil {
		return nil, err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return s.debtToResponse(debt), nil
}

// ── MakePayment ───────────────────────────────────────────────────────────────
// The only place DebtPayment rows are created. One transaction updates the
// aggregate fields and appends the ledger entry; a failure reverts both, so
// sum(payments.amount) == debt.amount_paid holds at every commit point.
//
// Overpayment is rejected, not clamped: a till operator typing an extra zero
// should hear about it rather than silently settle the debt.

func (s *debtService) MakePayment(ctx context.Context, userID uuid.UUID, debtID uuid.UUID, req dto.MakePaymentRequest) (*dto.DebtResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.InvalidAmount("payment amount must be positive")
	}
	var recordedBy *uuid.UUID
	if userID != uuid.Nil {
		recordedBy = &userID
	}

	var updated *model.Debt
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		debt, err := s.repo.FindByIDForUpdate(tx, debtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("debt not found")
			}
			return err
		}
		if debt.Status == model.DebtPaid {
			return domain.InvalidState("debt is already fully paid")
		}

		newPaid := debt.AmountPaid.Add(req.Amount)
		if newPaid.GreaterThan(debt.Amount) {
			return domain.InvalidAmount("payment exceeds the outstanding balance")
		}

		balance := debt.Amount.Sub(newPaid)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		status := model.DebtPartiallyPaid
		if balance.IsZero() {
			status = model.DebtPaid
		}

		debt.AmountPaid = newPaid
		debt.Balance = balance
		debt.Status = status
		if err := s.repo.UpdateTx(tx, debt); err != nil {
			return err
		}

		if err := s.repo.CreatePaymentTx(tx, &model.DebtPayment{
			DebtID:     debt.ID,
			Amount:     req.Amount,
			Method:     req.Method,
			Reference:  optional(req.Reference),
			RecordedBy: recordedBy,
		}); err != nil {
			return err
		}

		updated = debt
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return s.debtToResponse(updated), nil
}

func (s *debtService) GetByID(ctx context.Context, id uuid.UUID) (*dto.DebtResponse, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("debt not found")
	}
	resp := s.debtToResponse(debt)
	for i := range debt.Payments {
		resp.Payments = append(resp.Payments, paymentToResponse(&debt.Payments[i]))
	}
	return resp, nil
}

func (s *debtService) List(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	debts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DebtResponse, 0, len(debts))
	for i := range debts {
		items = append(items, *s.debtToResponse(&debts[i]))
	}
	return &dto.DebtListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Update edits descriptive fields only. Amount, amount_paid and balance are
// owned by the sale orchestrator and the payment ledger.
func (s *debtService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateDebtRequest) (*dto.DebtResponse, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("debt not found")
	}
	if req.CustomerName != nil {
		debt.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		debt.CustomerPhone = req.CustomerPhone
	}
	if req.DueDate != nil {
		debt.DueDate = parseDate(*req.DueDate)
	}
	if req.Notes != nil {
		debt.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, debt); err != nil {
		return nil, err
	}
	return s.debtToResponse(debt), nil
}

func (s *debtService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return domain.NotFound("debt not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func (s *debtService) ListPayments(ctx context.Context, debtID uuid.UUID) ([]dto.DebtPaymentResponse, error) {
	if _, err := s.repo.FindByID(ctx, debtID); err != nil {
		return nil, domain.NotFound("debt not found")
	}
	payments, err := s.repo.ListPayments(ctx, debtID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DebtPaymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, paymentToResponse(&payments[i]))
	}
	return resp, nil
}

func (s *debtService) debtToResponse(d *model.Debt) *dto.DebtResponse {
	resp := &dto.DebtResponse{
		ID:            d.ID.String(),
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		Amount:        d.Amount,
		AmountPaid:    d.AmountPaid,
		Balance:       d.Balance,
		Status:        d.Status,
		Overdue:       d.Overdue(s.now()),
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     d.UpdatedAt.Format(time.RFC3339),
	}
	if d.SaleID != nil {
		id := d.SaleID.String()
		resp.SaleID = &id
	}
	if d.DueDate != nil {
		due := d.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}
	return resp
}

func paymentToResponse(p *model.DebtPayment) dto.DebtPaymentResponse {
	return dto.DebtPaymentResponse{
		ID:        p.ID.String(),
		DebtID:    p.DebtID.String(),
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
