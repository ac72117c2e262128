package service

import (
	"context"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/cache"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/domain"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/repository"

	"github.com/google/uuid"
)

type ExpenseService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error)
	List(ctx context.Context, filter dto.ExpenseFilter) (*dto.ExpenseListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseService struct {
	repo  repository.ExpenseRepository
	stats cache.StatsCache
}

func NewExpenseService(repo repository.ExpenseRepository, stats cache.StatsCache) ExpenseService {
	if stats == nil {
		stats = cache.Noop{}
	}
	return &expenseService{repo: repo, stats: stats}
}

func (s *expenseService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	date := parseDate(req.ExpenseDate)
	if date == nil {
		return nil, domain.InvalidAmount("invalid expense_date")
	}
	var recordedBy *uuid.UUID
	if userID != uuid.Nil {
		recordedBy = &userID
	}
	e := &model.Expense{
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		ExpenseDate: *date,
		RecordedBy:  recordedBy,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return expenseToResponse(e), nil
}

func (s *expenseService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("expense not found")
	}
	return expenseToResponse(e), nil
}

func (s *expenseService) List(ctx context.Context, filter dto.ExpenseFilter) (*dto.ExpenseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	expenses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		items = append(items, *expenseToResponse(&expenses[i]))
	}
	return &dto.ExpenseListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *expenseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("expense not found")
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.ExpenseDate != nil {
		if date := parseDate(*req.ExpenseDate); date != nil {
			e.ExpenseDate = *date
		}
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return expenseToResponse(e), nil
}

func (s *expenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return domain.NotFound("expense not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:          e.ID.String(),
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
