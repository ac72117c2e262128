package service

import (
	"context"
	"errors"
	"fmt"
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

type SaleService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type saleService struct {
	repo        repository.SaleRepository
	productRepo repository.ProductRepository
	debtRepo    repository.DebtRepository
	movements   repository.StockMovementRepository
	stats       cache.StatsCache
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	debtRepo repository.DebtRepository,
	movements repository.StockMovementRepository,
	stats cache.StatsCache,
) SaleService {
	if stats == nil {
		stats = cache.Noop{}
	}
	return &saleService{
		repo:        repo,
		productRepo: productRepo,
		debtRepo:    debtRepo,
		movements:   movements,
		stats:       stats,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// One atomic unit: validate stock under a row lock, insert the sale, decrement
// stock, record the stock movement and, for debt sales, insert the linked
// debt. Either all of it happens or none of it does.
//
// The stock check runs inside the transaction, after the FOR UPDATE read, so
// two concurrent sales of the same product cannot both pass the check when
// their combined quantity exceeds what is on hand.

func (s *saleService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}

	var recordedBy *uuid.UUID
	if userID != uuid.Nil {
		recordedBy = &userID
	}

	var sale model.Sale
	var debtID *uuid.UUID
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.productRepo.FindByIDForUpdate(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("product not found")
			}
			return err
		}
		if p.StockQuantity < req.Quantity {
			return domain.InsufficientStock(fmt.Sprintf(
				"insufficient stock for %s: have %d, need %d", p.Name, p.StockQuantity, req.Quantity))
		}

		unitPrice := req.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = p.UnitPrice
		}
		// The server is authoritative for the total; nothing client-derived
		// is trusted here.
		total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

		sale = model.Sale{
			ProductID:        p.ID,
			ProductName:      p.Name,
			Quantity:         req.Quantity,
			UnitPrice:        unitPrice,
			Total:            total,
			PaymentMethod:    req.PaymentMethod,
			CustomerName:     optional(req.CustomerName),
			CustomerPhone:    optional(req.CustomerPhone),
			Status:           model.SaleCompleted,
			PaymentReference: optional(req.PaymentReference),
			Notes:            optional(req.Notes),
			RecordedBy:       recordedBy,
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		if err := s.productRepo.DecrementStockTx(tx, p.ID, req.Quantity); err != nil {
			return err
		}
		saleRef := sale.ID
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:   p.ID,
			Type:        model.MovementSale,
			Quantity:    -req.Quantity,
			StockBefore: p.StockQuantity,
			StockAfter:  p.StockQuantity - req.Quantity,
			Reason:      fmt.Sprintf("Sale of %d x %s", req.Quantity, p.Name),
			SaleID:      &saleRef,
			RecordedBy:  recordedBy,
		}); err != nil {
			return err
		}

		if req.PaymentMethod == model.PaymentDebt {
			debt := model.Debt{
				SaleID:        &saleRef,
				CustomerName:  req.CustomerName,
				CustomerPhone: optional(req.CustomerPhone),
				Amount:        total,
				AmountPaid:    decimal.Zero,
				Balance:       total,
				Status:        model.DebtPending,
				DueDate:       parseDate(req.DueDate),
				Notes:         optional(fmt.Sprintf("%d x %s @ %s", req.Quantity, p.Name, unitPrice.StringFixed(2))),
				RecordedBy:    recordedBy,
			}
			if err := s.debtRepo.CreateTx(tx, &debt); err != nil {
				return err
			}
			id := debt.ID
			debtID = &id
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best effort; a cache miss is always safe.
	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)

	resp := saleToResponse(&sale)
	if debtID != nil {
		id := debtID.String()
		resp.DebtID = &id
	}
	return resp, nil
}

// ── Delete ────────────────────────────────────────────────────────────────────
// Atomic reversal: restore stock, drop the linked debt (and its payments),
// remove the sale. Restoration has no upper bound to validate against.
// The sale row is read and locked inside the transaction, so a concurrent
// delete of the same sale blocks here and then sees the row gone; the stock
// restore can only ever run once per sale.

func (s *saleService) Delete(ctx context.Context, id uuid.UUID) error {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("sale not found")
			}
			return err
		}

		var p *model.Product
		// A cancelled sale already had its stock restored.
		if sale.Status != model.SaleCancelled {
			p, err = s.productRepo.FindByIDForUpdate(tx, sale.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Product was removed after its last sale; nothing to restore.
					p = nil
				} else {
					return err
				}
			}
		}

		if p != nil {
			if err := s.productRepo.IncrementStockTx(tx, p.ID, sale.Quantity); err != nil {
				return err
			}
			saleRef := sale.ID
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ProductID:   p.ID,
				Type:        model.MovementSaleReversal,
				Quantity:    sale.Quantity,
				StockBefore: p.StockQuantity,
				StockAfter:  p.StockQuantity + sale.Quantity,
				Reason:      fmt.Sprintf("Reversal of sale %s", sale.ID),
				SaleID:      &saleRef,
			}); err != nil {
				return err
			}
		}

		debt, err := s.debtRepo.FindBySaleTx(tx, sale.ID)
		if err != nil {
			return err
		}
		if debt != nil {
			if err := s.debtRepo.DeleteWithPaymentsTx(tx, debt.ID); err != nil {
				return err
			}
		}

		return s.repo.DeleteTx(tx, sale.ID)
	})
	if txErr != nil {
		return txErr
	}

	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Quantity or product changes apply the signed stock delta inside the same
// transaction as the sale update, so stock and the sale row cannot diverge.
// The sale is read under a row lock inside the transaction, so a concurrent
// delete or update cannot leave this call computing deltas from a stale row.

func (s *saleService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	var reqProductID uuid.UUID
	if req.ProductID != "" {
		pid, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		reqProductID = pid
	}

	var sale *model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("sale not found")
			}
			return err
		}

		if sale.Status == model.SaleCancelled {
			return domain.InvalidState("cancelled sale cannot be modified")
		}
		if req.Status == model.SaleCancelled {
			if req.Quantity != nil || req.ProductID != "" || req.UnitPrice != nil {
				return domain.InvalidState("cancellation cannot be combined with quantity, product or price changes")
			}
			return s.cancelTx(tx, sale, req)
		}

		newProductID := sale.ProductID
		if req.ProductID != "" {
			newProductID = reqProductID
		}
		newQty := sale.Quantity
		if req.Quantity != nil {
			newQty = *req.Quantity
		}

		switch {
		case newProductID != sale.ProductID:
			// Restore the old product in full, then take from the new one.
			oldP, err := s.productRepo.FindByIDForUpdate(tx, sale.ProductID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				if err := s.productRepo.IncrementStockTx(tx, oldP.ID, sale.Quantity); err != nil {
					return err
				}
				saleRef := sale.ID
				if err := s.movements.CreateTx(tx, &model.StockMovement{
					ProductID:   oldP.ID,
					Type:        model.MovementSaleUpdate,
					Quantity:    sale.Quantity,
					StockBefore: oldP.StockQuantity,
					StockAfter:  oldP.StockQuantity + sale.Quantity,
					Reason:      fmt.Sprintf("Sale %s moved to another product", sale.ID),
					SaleID:      &saleRef,
				}); err != nil {
					return err
				}
			}

			newP, err := s.productRepo.FindByIDForUpdate(tx, newProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NotFound("product not found")
				}
				return err
			}
			if newP.StockQuantity < newQty {
				return domain.InsufficientStock(fmt.Sprintf(
					"insufficient stock for %s: have %d, need %d", newP.Name, newP.StockQuantity, newQty))
			}
			if err := s.productRepo.DecrementStockTx(tx, newP.ID, newQty); err != nil {
				return err
			}
			saleRef := sale.ID
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ProductID:   newP.ID,
				Type:        model.MovementSaleUpdate,
				Quantity:    -newQty,
				StockBefore: newP.StockQuantity,
				StockAfter:  newP.StockQuantity - newQty,
				Reason:      fmt.Sprintf("Sale %s moved to this product", sale.ID),
				SaleID:      &saleRef,
			}); err != nil {
				return err
			}
			sale.ProductID = newP.ID
			sale.ProductName = newP.Name
			if req.UnitPrice == nil {
				sale.UnitPrice = newP.UnitPrice
			}

		case newQty != sale.Quantity:
			// Same product: apply only the signed difference.
			p, err := s.productRepo.FindByIDForUpdate(tx, sale.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NotFound("product not found")
				}
				return err
			}
			delta := newQty - sale.Quantity
			if delta > 0 {
				if p.StockQuantity < delta {
					return domain.InsufficientStock(fmt.Sprintf(
						"insufficient stock for %s: have %d, need %d more", p.Name, p.StockQuantity, delta))
				}
				if err := s.productRepo.DecrementStockTx(tx, p.ID, delta); err != nil {
					return err
				}
			} else {
				if err := s.productRepo.IncrementStockTx(tx, p.ID, -delta); err != nil {
					return err
				}
			}
			saleRef := sale.ID
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ProductID:   p.ID,
				Type:        model.MovementSaleUpdate,
				Quantity:    -delta,
				StockBefore: p.StockQuantity,
				StockAfter:  p.StockQuantity - delta,
				Reason:      fmt.Sprintf("Sale %s quantity %d -> %d", sale.ID, sale.Quantity, newQty),
				SaleID:      &saleRef,
			}); err != nil {
				return err
			}
		}

		sale.Quantity = newQty
		if req.UnitPrice != nil {
			sale.UnitPrice = *req.UnitPrice
		}
		sale.Total = sale.UnitPrice.Mul(decimal.NewFromInt(int64(newQty)))
		if req.Status != "" {
			sale.Status = req.Status
		}
		if req.CustomerName != nil {
			sale.CustomerName = req.CustomerName
		}
		if req.CustomerPhone != nil {
			sale.CustomerPhone = req.CustomerPhone
		}
		if req.Notes != nil {
			sale.Notes = req.Notes
		}

		// Keep a linked debt in sync. Descriptive fields always follow the
		// sale; the amount only while the debt is untouched, because once
		// payments exist the amount is owned by the ledger.
		debt, err := s.debtRepo.FindBySaleTx(tx, sale.ID)
		if err != nil {
			return err
		}
		if debt != nil {
			changed := false
			if req.CustomerName != nil && debt.CustomerName != *req.CustomerName {
				debt.CustomerName = *req.CustomerName
				changed = true
			}
			if req.CustomerPhone != nil {
				debt.CustomerPhone = req.CustomerPhone
				changed = true
			}
			if !debt.Amount.Equal(sale.Total) {
				if debt.AmountPaid.IsPositive() {
					return domain.InvalidState("cannot change the amount of a sale whose debt already has payments")
				}
				debt.Amount = sale.Total
				debt.Balance = sale.Total
				changed = true
			}
			if changed {
				if err := s.debtRepo.UpdateTx(tx, debt); err != nil {
					return err
				}
			}
		}

		return s.repo.UpdateTx(tx, sale)
	})
	if txErr != nil {
		return nil, txErr
	}

	_ = s.stats.Invalidate(ctx, cache.DashboardStatsKey)
	return saleToResponse(sale), nil
}

// cancelTx voids a sale in place: stock comes back, an unpaid linked debt is
// removed, but the row survives as a cancelled record. Reports exclude
// cancelled sales, so the stock ledger and revenue stay consistent.
func (s *saleService) cancelTx(tx *gorm.DB, sale *model.Sale, req dto.UpdateSaleRequest) error {
	debt, err := s.debtRepo.FindBySaleTx(tx, sale.ID)
	if err != nil {
		return err
	}
	if debt != nil && debt.AmountPaid.IsPositive() {
		return domain.InvalidState("cannot cancel a sale whose debt already has payments")
	}

	p, err := s.productRepo.FindByIDForUpdate(tx, sale.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		if err := s.productRepo.IncrementStockTx(tx, p.ID, sale.Quantity); err != nil {
			return err
		}
		saleRef := sale.ID
		if err := s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:   p.ID,
			Type:        model.MovementSaleReversal,
			Quantity:    sale.Quantity,
			StockBefore: p.StockQuantity,
			StockAfter:  p.StockQuantity + sale.Quantity,
			Reason:      fmt.Sprintf("Cancellation of sale %s", sale.ID),
			SaleID:      &saleRef,
		}); err != nil {
			return err
		}
	}

	if debt != nil {
		if err := s.debtRepo.DeleteWithPaymentsTx(tx, debt.ID); err != nil {
			return err
		}
	}

	sale.Status = model.SaleCancelled
	if req.Notes != nil {
		sale.Notes = req.Notes
	}
	return s.repo.UpdateTx(tx, sale)
}

func (s *saleService) GetByID(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NotFound("sale not found")
	}
	return saleToResponse(sale), nil
}

// List returns a paginated list of sales, filtered by date range, status,
// payment method and product. Default filter: today's sales.
func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:               s.ID.String(),
		ProductID:        s.ProductID.String(),
		ProductName:      s.ProductName,
		Quantity:         s.Quantity,
		UnitPrice:        s.UnitPrice,
		Total:            s.Total,
		PaymentMethod:    s.PaymentMethod,
		CustomerName:     s.CustomerName,
		CustomerPhone:    s.CustomerPhone,
		Status:           s.Status,
		PaymentReference: s.PaymentReference,
		Notes:            s.Notes,
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
	}
}

// optional maps an empty string to nil for nullable columns.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
