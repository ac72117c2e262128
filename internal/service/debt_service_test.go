package service

import (
	"context"
	"testing"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/domain"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pay(amount string) dto.MakePaymentRequest {
	return dto.MakePaymentRequest{
		Amount: decimal.RequireFromString(amount),
		Method: "cash",
	}
}

func TestMakePaymentPartialThenFull(t *testing.T) {
	repo := newStubDebtRepo()
	svc := NewDebtService(repo, nil)
	debtID := repo.seed("Jane Wanjiru", "100", nil)

	resp, err := svc.MakePayment(context.Background(), uuid.Nil, debtID, pay("40"))
	require.NoError(t, err)
	assert.Equal(t, model.DebtPartiallyPaid, resp.Status)
	assert.True(t, resp.AmountPaid.Equal(decimal.RequireFromString("40")))
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("60")))

	resp, err = svc.MakePayment(context.Background(), uuid.Nil, debtID, pay("60"))
	require.NoError(t, err)
	assert.Equal(t, model.DebtPaid, resp.Status)
	assert.True(t, resp.Balance.IsZero())

	// Ledger holds both entries and sums to amount_paid.
	payments, err := svc.ListPayments(context.Background(), debtID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sum.Equal(resp.AmountPaid))
}

func TestMakePaymentOnPaidDebtRejected(t *testing.T) {
	repo := newStubDebtRepo()
	svc := NewDebtService(repo, nil)
	debtID := repo.seed("Jane Wanjiru", "100", nil)

	_, err := svc.MakePayment(context.Background(), uuid.Nil, debtID, pay("100"))
	require.NoError(t, err)

	_, err = svc.MakePayment(context.Background(), uuid.Nil, debtID, pay("10"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestMakePaymentOverpaymentRejected(t *testing.T) {
	repo := newStubDebtRepo()
	svc := NewDebtService(repo, nil)
	debtID := repo.seed("Jane Wanjiru", "100", nil)

	_, err := svc.MakePayment(context.Background(), uuid.Nil, debtID, pay("150"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidAmount, domain.KindOf(err))

	// Debt and ledger untouched.
	debt := repo.debts[debtID]
	assert.True(t, debt.AmountPaid.IsZero())
	assert.Equal(t, model.DebtPending, debt.Status)
	assert.Empty(t, repo.payments[debtID])
}

func TestMakePaymentNonPositiveRejected(t *testing.T) {
	repo := newStubDebtRepo()
	svc := NewDebtService(repo, nil)
	debtID := repo.seed("Jane Wanjiru", "100", nil)

	_, err := svc.MakePayment(context.Background(), uuid.Nil, debtID, pay("0"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidAmount, domain.KindOf(err))
}

func TestMakePaymentDebtNotFound(t *testing.T) {
	svc := NewDebtService(newStubDebtRepo(), nil)
	_, err := svc.MakePayment(context.Background(), uuid.Nil, uuid.New(), pay("10"))
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestOverdueIsDerivedFromClock(t *testing.T) {
	repo := newStubDebtRepo()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc := NewDebtServiceWithClock(repo, nil, func() time.Time { return now })

	due := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	lateID := repo.seed("Late Customer", "100", &due)

	futureDue := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	onTimeID := repo.seed("On Time", "100", &futureDue)

	late, err := svc.GetByID(context.Background(), lateID)
	require.NoError(t, err)
	assert.True(t, late.Overdue)
	// Stored status is untouched; overdue is a read-time view.
	assert.Equal(t, model.DebtPending, repo.debts[lateID].Status)

	onTime, err := svc.GetByID(context.Background(), onTimeID)
	require.NoError(t, err)
	assert.False(t, onTime.Overdue)

	// A fully paid debt is never overdue, however late.
	_, err = svc.MakePayment(context.Background(), uuid.Nil, lateID, pay("100"))
	require.NoError(t, err)
	late, err = svc.GetByID(context.Background(), lateID)
	require.NoError(t, err)
	assert.False(t, late.Overdue)
}

func TestCreateStandaloneDebt(t *testing.T) {
	repo := newStubDebtRepo()
	svc := NewDebtService(repo, nil)

	resp, err := svc.Create(context.Background(), uuid.Nil, dto.CreateDebtRequest{
		CustomerName:  "Mary Atieno",
		CustomerPhone: "0700111222",
		Amount:        decimal.RequireFromString("350"),
		DueDate:       "2026-09-30",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DebtPending, resp.Status)
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("350")))
	assert.Nil(t, resp.SaleID)
}

func TestUpdateDebtDescriptiveFieldsOnly(t *testing.T) {
	repo := newStubDebtRepo()
	svc := NewDebtService(repo, nil)
	debtID := repo.seed("Jane Wanjiru", "100", nil)

	phone := "0733999888"
	resp, err := svc.Update(context.Background(), debtID, dto.UpdateDebtRequest{
		CustomerPhone: &phone,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.CustomerPhone)
	assert.Equal(t, phone, *resp.CustomerPhone)

	// Amounts are untouched by Update.
	debt := repo.debts[debtID]
	assert.True(t, debt.Amount.Equal(decimal.RequireFromString("100")))
	assert.True(t, debt.Balance.Equal(debt.Amount))
}
