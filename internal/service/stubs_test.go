package service

import (
	"context"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/domain"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. They return gorm.ErrRecordNotFound like the
// real implementations so the services' error mapping is exercised, and they
// hand out copies so a caller mutating a result cannot bypass the Update
// methods.

// ── stubProductRepo ───────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) seed(name string, price string, stock, reorder int) uuid.UUID {
	id := uuid.New()
	r.products[id] = &model.Product{
		ID:            id,
		Name:          name,
		Category:      "general",
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: stock,
		ReorderLevel:  reorder,
	}
	return id
}

func (r *stubProductRepo) stock(id uuid.UUID) int { return r.products[id].StockQuantity }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.StockQuantity <= p.ReorderLevel {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.StockQuantity < qty {
		return domain.InsufficientStock("insufficient stock")
	}
	p.StockQuantity -= qty
	return nil
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity += qty
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── stubSaleRepo ──────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) UpdateTx(_ *gorm.DB, s *model.Sale) error {
	if _, ok := r.sales[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.sales[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *stubSaleRepo) CountByProductID(_ context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	for _, s := range r.sales {
		if s.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── stubDebtRepo ──────────────────────────────────────────────────────────────

type stubDebtRepo struct {
	debts    map[uuid.UUID]*model.Debt
	payments map[uuid.UUID][]model.DebtPayment
}

func newStubDebtRepo() *stubDebtRepo {
	return &stubDebtRepo{
		debts:    make(map[uuid.UUID]*model.Debt),
		payments: make(map[uuid.UUID][]model.DebtPayment),
	}
}

func (r *stubDebtRepo) seed(customer string, amount string, due *time.Time) uuid.UUID {
	id := uuid.New()
	amt := decimal.RequireFromString(amount)
	r.debts[id] = &model.Debt{
		ID:           id,
		CustomerName: customer,
		Amount:       amt,
		AmountPaid:   decimal.Zero,
		Balance:      amt,
		Status:       model.DebtPending,
		DueDate:      due,
	}
	return id
}

func (r *stubDebtRepo) Create(_ context.Context, d *model.Debt) error {
	return r.CreateTx(nil, d)
}

func (r *stubDebtRepo) CreateTx(_ *gorm.DB, d *model.Debt) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.debts[d.ID] = &cp
	return nil
}

func (r *stubDebtRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Debt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	cp.Payments = append([]model.DebtPayment(nil), r.payments[id]...)
	return &cp, nil
}

func (r *stubDebtRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Debt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *stubDebtRepo) FindBySaleTx(_ *gorm.DB, saleID uuid.UUID) (*model.Debt, error) {
	for _, d := range r.debts {
		if d.SaleID != nil && *d.SaleID == saleID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubDebtRepo) List(_ context.Context, _ dto.DebtFilter) ([]model.Debt, int64, error) {
	out := make([]model.Debt, 0, len(r.debts))
	for _, d := range r.debts {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubDebtRepo) Update(_ context.Context, d *model.Debt) error {
	return r.UpdateTx(nil, d)
}

func (r *stubDebtRepo) UpdateTx(_ *gorm.DB, d *model.Debt) error {
	if _, ok := r.debts[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *d
	r.debts[d.ID] = &cp
	return nil
}

func (r *stubDebtRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.DeleteWithPaymentsTx(nil, id)
}

func (r *stubDebtRepo) DeleteWithPaymentsTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.payments, id)
	delete(r.debts, id)
	return nil
}

func (r *stubDebtRepo) CreatePaymentTx(_ *gorm.DB, p *model.DebtPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments[p.DebtID] = append(r.payments[p.DebtID], *p)
	return nil
}

func (r *stubDebtRepo) ListPayments(_ context.Context, debtID uuid.UUID) ([]model.DebtPayment, error) {
	return append([]model.DebtPayment(nil), r.payments[debtID]...), nil
}

func (r *stubDebtRepo) DB() *gorm.DB { return nil }

var _ repository.DebtRepository = (*stubDebtRepo)(nil)

// ── stubMovementRepo ──────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── stubExpenseRepo ───────────────────────────────────────────────────────────

type stubExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *stubExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubExpenseRepo) List(_ context.Context, _ dto.ExpenseFilter) ([]model.Expense, int64, error) {
	out := make([]model.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	if _, ok := r.expenses[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *stubExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.expenses, id)
	return nil
}

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)

// ── stubReportRepo ────────────────────────────────────────────────────────────

type stubReportRepo struct {
	dashboardCalls int
	stats          repository.DashboardStats
}

func (r *stubReportRepo) DashboardStats(_ context.Context, _ time.Time) (*repository.DashboardStats, error) {
	r.dashboardCalls++
	cp := r.stats
	return &cp, nil
}

func (r *stubReportRepo) SalesByDay(_ context.Context, _, _ string) ([]repository.DailySales, error) {
	return nil, nil
}

func (r *stubReportRepo) TopProducts(_ context.Context, _, _ string, _ int) ([]repository.TopProduct, error) {
	return nil, nil
}

func (r *stubReportRepo) PaymentMethodBreakdown(_ context.Context, _, _ string) ([]repository.MethodTotal, error) {
	return nil, nil
}

func (r *stubReportRepo) ExpensesByCategory(_ context.Context, _, _ string) ([]repository.CategoryTotal, error) {
	return nil, nil
}

var _ repository.ReportRepository = (*stubReportRepo)(nil)
