package repository

import (
	"context"
	"errors"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DebtRepository interface {
	Create(ctx context.Context, d *model.Debt) error
	CreateTx(tx *gorm.DB, d *model.Debt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Debt, error)
	List(ctx context.Context, filter dto.DebtFilter) ([]model.Debt, int64, error)
	Update(ctx context.Context, d *model.Debt) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions; callers must pass the tx instance.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Debt, error)
	FindBySaleTx(tx *gorm.DB, saleID uuid.UUID) (*model.Debt, error)
	UpdateTx(tx *gorm.DB, d *model.Debt) error
	DeleteWithPaymentsTx(tx *gorm.DB, id uuid.UUID) error

	// CreatePaymentTx is the only write path for debt_payments.
	CreatePaymentTx(tx *gorm.DB, p *model.DebtPayment) error
	ListPayments(ctx context.Context, debtID uuid.UUID) ([]model.DebtPayment, error)

	DB() *gorm.DB
}

type debtRepo struct{ db *gorm.DB }

func NewDebtRepository(db *gorm.DB) DebtRepository { return &debtRepo{db: db} }

func (r *debtRepo) DB() *gorm.DB { return r.db }

func (r *debtRepo) Create(ctx context.Context, d *model.Debt) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *debtRepo) CreateTx(tx *gorm.DB, d *model.Debt) error {
	return tx.Create(d).Error
}

func (r *debtRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Debt, error) {
	var d model.Debt
	err := r.db.WithContext(ctx).Preload("Payments").First(&d, id).Error
	return &d, err
}

// FindByIDForUpdate locks the debt row so concurrent payments against the
// same debt serialize their read-recompute-write cycle.
func (r *debtRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Debt, error) {
	var d model.Debt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	return &d, err
}

// FindBySaleTx returns nil, nil when the sale has no linked debt.
func (r *debtRepo) FindBySaleTx(tx *gorm.DB, saleID uuid.UUID) (*model.Debt, error) {
	var d model.Debt
	err := tx.Where("sale_id = ?", saleID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *debtRepo) List(ctx context.Context, filter dto.DebtFilter) ([]model.Debt, int64, error) {
	var debts []model.Debt
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Debt{})

	switch filter.Status {
	case "", "all":
		// no filter
	case "overdue":
		// Derived state: past due and not fully paid.
		q = q.Where("status <> ? AND due_date IS NOT NULL AND due_date < NOW()", model.DebtPaid)
	default:
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Customer != "" {
		q = q.Where("customer_name ILIKE ?", "%"+filter.Customer+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&debts).Error
	return debts, total, err
}

func (r *debtRepo) Update(ctx context.Context, d *model.Debt) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *debtRepo) UpdateTx(tx *gorm.DB, d *model.Debt) error {
	return tx.Save(d).Error
}

func (r *debtRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return r.DeleteWithPaymentsTx(tx.WithContext(ctx), id)
	})
}

// DeleteWithPaymentsTx removes the ledger first, then the debt. Cascade is
// made explicit here rather than relying solely on the FK definition.
func (r *debtRepo) DeleteWithPaymentsTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("debt_id = ?", id).Delete(&model.DebtPayment{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Debt{}, id).Error
}

func (r *debtRepo) CreatePaymentTx(tx *gorm.DB, p *model.DebtPayment) error {
	return tx.Create(p).Error
}

func (r *debtRepo) ListPayments(ctx context.Context, debtID uuid.UUID) ([]model.DebtPayment, error) {
	var payments []model.DebtPayment
	err := r.db.WithContext(ctx).
		Where("debt_id = ?", debtID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
