package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/cache"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/domain"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	ListLowStock(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, userID uuid.UUID, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.StockMovementListResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	saleRepo  repository.SaleRepository
	movements repository.StockMovementRepository
	stats     cache.StatsCache
}

func NewProductService(
	repo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	movements repository.StockMovementRepository,
	stats cache.StatsCache,
) ProductService {
	if stats == nil {
		stats = cache.Noop{}
	}
	return &productService{repo: repo, saleRepo: saleRepo, movements: movements, stats: stats}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:          req.Name,
		Category:      req.Category,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		ReorderLevel:  req.ReorderLevel,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("product not found")
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return items, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("product not found")
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		p.ReorderLevel = *req.ReorderLevel
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

// Delete pre-checks for referencing sales so the client gets a domain message
// instead of a raw foreign-key violation.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return domain.NotFound("product not found")
	}
	count, err := s.saleRepo.CountByProductID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.Constraint(fmt.Sprintf("product has %d sale record(s) and cannot be deleted", count))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

// AdjustStock applies a signed manual correction under the same row lock the
// sale path uses, and records the movement. The delta may not drive stock
// negative.
func (s *productService) AdjustStock(ctx context.Context, userID uuid.UUID, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	var recordedBy *uuid.UUID
	if userID != uuid.Nil {
		recordedBy = &userID
	}

	var updated *model.Product
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			return domain.NotFound("product not found")
		}
		if req.Delta < 0 {
			if p.StockQuantity < -req.Delta {
				return domain.InsufficientStock(fmt.Sprintf(
					"adjustment would drive stock negative: have %d, removing %d", p.StockQuantity, -req.Delta))
			}
			if err := s.repo.DecrementStockTx(tx, p.ID, -req.Delta); err != nil {
				return err
			}
		} else {
			if err := s.repo.IncrementStockTx(tx, p.ID, req.Delta); err != nil {
				return err
			}
		}
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:   p.ID,
			Type:        model.MovementAdjustment,
			Quantity:    req.Delta,
			StockBefore: p.StockQuantity,
			StockAfter:  p.StockQuantity + req.Delta,
			Reason:      req.Reason,
			RecordedBy:  recordedBy,
		}); err != nil {
			return err
		}
		p.StockQuantity += req.Delta
		updated = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return productToResponse(updated), nil
}

// ListMovements exposes the stock audit trail.
func (s *productService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.StockMovementListResponse, error) {
	repoFilter := repository.StockMovementFilter{
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		repoFilter.ProductID = &pid
	}
	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit < 1 {
		repoFilter.Limit = 100
	}

	movements, total, err := s.movements.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		item := dto.StockMovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.Product != nil {
			item.ProductName = m.Product.Name
		}
		if m.SaleID != nil {
			id := m.SaleID.String()
			item.SaleID = &id
		}
		items = append(items, item)
	}
	return &dto.StockMovementListResponse{
		Data:  items,
		Total: total,
		Page:  repoFilter.Page,
		Limit: repoFilter.Limit,
	}, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Category:      p.Category,
		UnitPrice:     p.UnitPrice,
		StockQuantity: p.StockQuantity,
		ReorderLevel:  p.ReorderLevel,
		LowStock:      p.StockQuantity <= p.ReorderLevel,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}
