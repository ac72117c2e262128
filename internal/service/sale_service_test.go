package service

import (
	"context"
	"testing"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/domain"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/dto"
	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	products  *stubProductRepo
	sales     *stubSaleRepo
	debts     *stubDebtRepo
	movements *stubMovementRepo
	svc       SaleService
}

func newSaleFixture() *saleFixture {
	f := &saleFixture{
		products:  newStubProductRepo(),
		sales:     newStubSaleRepo(),
		debts:     newStubDebtRepo(),
		movements: &stubMovementRepo{},
	}
	f.svc = NewSaleService(f.sales, f.products, f.debts, f.movements, nil)
	return f
}

func TestCreateSaleCash(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	// Total computed server-side from the catalog price.
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("300")), "total = %s", resp.Total)
	assert.Equal(t, "Rice 5kg", resp.ProductName)
	assert.Equal(t, model.SaleCompleted, resp.Status)
	assert.Nil(t, resp.DebtID)

	assert.Equal(t, 7, f.products.stock(productID))
	assert.Len(t, f.sales.sales, 1)
	assert.Empty(t, f.debts.debts)

	require.Len(t, f.movements.movements, 1)
	mv := f.movements.movements[0]
	assert.Equal(t, model.MovementSale, mv.Type)
	assert.Equal(t, -3, mv.Quantity)
	assert.Equal(t, 10, mv.StockBefore)
	assert.Equal(t, 7, mv.StockAfter)
}

func TestCreateSalePriceOverride(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		UnitPrice:     decimal.RequireFromString("80"),
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("240")), "total = %s", resp.Total)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	_, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      11,
		PaymentMethod: model.PaymentCash,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))

	// Nothing was written.
	assert.Equal(t, 10, f.products.stock(productID))
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.movements.movements)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	f := newSaleFixture()

	_, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     uuid.NewString(),
		Quantity:      1,
		PaymentMethod: model.PaymentCash,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestCreateSaleDebtCreatesLinkedDebt(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Cooking Oil 1L", "250", 20, 5)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      2,
		PaymentMethod: model.PaymentDebt,
		CustomerName:  "Jane Wanjiru",
		CustomerPhone: "0712345678",
		DueDate:       "2026-09-15",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.DebtID)

	require.Len(t, f.debts.debts, 1)
	var debt *model.Debt
	for _, d := range f.debts.debts {
		debt = d
	}
	saleID := uuid.MustParse(resp.ID)
	require.NotNil(t, debt.SaleID)
	assert.Equal(t, saleID, *debt.SaleID)
	assert.Equal(t, "Jane Wanjiru", debt.CustomerName)
	assert.True(t, debt.Amount.Equal(decimal.RequireFromString("500")))
	assert.True(t, debt.AmountPaid.IsZero())
	assert.True(t, debt.Balance.Equal(debt.Amount))
	assert.Equal(t, model.DebtPending, debt.Status)
	require.NotNil(t, debt.DueDate)
	assert.Equal(t, "2026-09-15", debt.DueDate.Format("2006-01-02"))

	assert.Equal(t, 18, f.products.stock(productID))
}

func TestDeleteSaleRestoresStockAndRemovesDebt(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Cooking Oil 1L", "250", 20, 5)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      2,
		PaymentMethod: model.PaymentDebt,
		CustomerName:  "Jane Wanjiru",
		CustomerPhone: "0712345678",
	})
	require.NoError(t, err)
	require.Equal(t, 18, f.products.stock(productID))

	err = f.svc.Delete(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)

	assert.Equal(t, 20, f.products.stock(productID))
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.debts.debts)
	assert.Empty(t, f.debts.payments[uuid.MustParse(*resp.DebtID)])

	// Original sale movement plus the reversal.
	require.Len(t, f.movements.movements, 2)
	assert.Equal(t, model.MovementSaleReversal, f.movements.movements[1].Type)
	assert.Equal(t, 2, f.movements.movements[1].Quantity)
}

func TestDeleteSaleNotFound(t *testing.T) {
	f := newSaleFixture()
	err := f.svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUpdateSaleQuantityAppliesDelta(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)
	require.Equal(t, 7, f.products.stock(productID))

	// Increase: take 2 more units.
	five := 5
	updated, err := f.svc.Update(context.Background(), saleID, dto.UpdateSaleRequest{Quantity: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, f.products.stock(productID))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("500")))

	// Decrease: give 3 back.
	two := 2
	updated, err = f.svc.Update(context.Background(), saleID, dto.UpdateSaleRequest{Quantity: &two})
	require.NoError(t, err)
	assert.Equal(t, 8, f.products.stock(productID))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("200")))
}

func TestUpdateSaleQuantityInsufficientStock(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	// 7 left on hand; going from 3 to 11 needs 8 more.
	eleven := 11
	_, err = f.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateSaleRequest{Quantity: &eleven})
	require.Error(t, err)
	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
}

func TestUpdateSaleProductChangeMovesStock(t *testing.T) {
	f := newSaleFixture()
	oldID := f.products.seed("Rice 5kg", "100", 10, 3)
	newID := f.products.seed("Maize Flour 2kg", "150", 6, 2)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     oldID.String(),
		Quantity:      4,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	require.Equal(t, 6, f.products.stock(oldID))

	updated, err := f.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateSaleRequest{
		ProductID: newID.String(),
	})
	require.NoError(t, err)

	// Old product fully restored, new product charged the full quantity.
	assert.Equal(t, 10, f.products.stock(oldID))
	assert.Equal(t, 2, f.products.stock(newID))
	assert.Equal(t, "Maize Flour 2kg", updated.ProductName)
	// Price re-captured from the new product.
	assert.True(t, updated.UnitPrice.Equal(decimal.RequireFromString("150")))
	assert.True(t, updated.Total.Equal(decimal.RequireFromString("600")))
}

func TestUpdateSaleRejectedWhenDebtHasPayments(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Cooking Oil 1L", "250", 20, 5)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      2,
		PaymentMethod: model.PaymentDebt,
		CustomerName:  "Jane Wanjiru",
		CustomerPhone: "0712345678",
	})
	require.NoError(t, err)

	// A payment lands on the linked debt.
	debtID := uuid.MustParse(*resp.DebtID)
	debt := f.debts.debts[debtID]
	debt.AmountPaid = decimal.RequireFromString("100")
	debt.Balance = decimal.RequireFromString("400")
	debt.Status = model.DebtPartiallyPaid

	// Changing the quantity would change the amount owed; refused.
	three := 3
	_, err = f.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateSaleRequest{Quantity: &three})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestDeleteSaleTwiceRestoresStockOnce(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)
	require.Equal(t, 7, f.products.stock(productID))

	require.NoError(t, f.svc.Delete(context.Background(), saleID))
	assert.Equal(t, 10, f.products.stock(productID))

	// A second delete of the same sale must see the row gone, not re-run
	// the reversal against its own stale copy of the sale.
	err = f.svc.Delete(context.Background(), saleID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	assert.Equal(t, 10, f.products.stock(productID), "stock restored exactly once")
	require.Len(t, f.movements.movements, 2)
	assert.Equal(t, model.MovementSaleReversal, f.movements.movements[1].Type)
}

func TestUpdateSaleAfterDeleteNotFound(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)
	require.NoError(t, f.svc.Delete(context.Background(), saleID))

	// The update locks the sale row first, so it cannot compute a stock
	// delta from a sale that no longer exists.
	five := 5
	_, err = f.svc.Update(context.Background(), saleID, dto.UpdateSaleRequest{Quantity: &five})
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Equal(t, 10, f.products.stock(productID))
}

func TestCancelSaleRestoresStockAndRemovesDebt(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Cooking Oil 1L", "250", 20, 5)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      2,
		PaymentMethod: model.PaymentDebt,
		CustomerName:  "Jane Wanjiru",
		CustomerPhone: "0712345678",
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)
	require.Equal(t, 18, f.products.stock(productID))

	updated, err := f.svc.Update(context.Background(), saleID, dto.UpdateSaleRequest{
		Status: model.SaleCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SaleCancelled, updated.Status)

	// Stock comes back, the unpaid debt is gone, but the sale row survives.
	assert.Equal(t, 20, f.products.stock(productID))
	assert.Empty(t, f.debts.debts)
	assert.Len(t, f.sales.sales, 1)
	require.Len(t, f.movements.movements, 2)
	assert.Equal(t, model.MovementSaleReversal, f.movements.movements[1].Type)
	assert.Equal(t, 2, f.movements.movements[1].Quantity)
}

func TestCancelledSaleIsFrozen(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)
	saleID := uuid.MustParse(resp.ID)

	_, err = f.svc.Update(context.Background(), saleID, dto.UpdateSaleRequest{Status: model.SaleCancelled})
	require.NoError(t, err)
	require.Equal(t, 10, f.products.stock(productID))

	// No further edits once cancelled.
	five := 5
	_, err = f.svc.Update(context.Background(), saleID, dto.UpdateSaleRequest{Quantity: &five})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	// Deleting a cancelled sale removes the record without restoring again.
	require.NoError(t, f.svc.Delete(context.Background(), saleID))
	assert.Equal(t, 10, f.products.stock(productID))
	require.Len(t, f.movements.movements, 2)
}

func TestCancelCombinedWithQuantityChangeRejected(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Rice 5kg", "100", 10, 3)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      3,
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	five := 5
	_, err = f.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateSaleRequest{
		Status:   model.SaleCancelled,
		Quantity: &five,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.Equal(t, 7, f.products.stock(productID))
}

func TestCancelSaleWithPaidDebtRejected(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Cooking Oil 1L", "250", 20, 5)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      2,
		PaymentMethod: model.PaymentDebt,
		CustomerName:  "Jane Wanjiru",
		CustomerPhone: "0712345678",
	})
	require.NoError(t, err)

	debt := f.debts.debts[uuid.MustParse(*resp.DebtID)]
	debt.AmountPaid = decimal.RequireFromString("100")
	debt.Balance = decimal.RequireFromString("400")
	debt.Status = model.DebtPartiallyPaid

	_, err = f.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateSaleRequest{
		Status: model.SaleCancelled,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.Equal(t, 18, f.products.stock(productID))
	assert.Len(t, f.debts.debts, 1)
}

func TestUpdateSaleSyncsDebtCustomerFields(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.seed("Cooking Oil 1L", "250", 20, 5)

	resp, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateSaleRequest{
		ProductID:     productID.String(),
		Quantity:      2,
		PaymentMethod: model.PaymentDebt,
		CustomerName:  "Jane Wanjiru",
		CustomerPhone: "0712345678",
	})
	require.NoError(t, err)

	name := "Jane W. Kamau"
	phone := "0722000111"
	_, err = f.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateSaleRequest{
		CustomerName:  &name,
		CustomerPhone: &phone,
	})
	require.NoError(t, err)

	debt := f.debts.debts[uuid.MustParse(*resp.DebtID)]
	require.NotNil(t, debt)
	assert.Equal(t, "Jane W. Kamau", debt.CustomerName)
	require.NotNil(t, debt.CustomerPhone)
	assert.Equal(t, "0722000111", *debt.CustomerPhone)
}
