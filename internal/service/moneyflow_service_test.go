package service

import (
	"context"
	"testing"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moneyflowFixture struct {
	storeRepo    *fakeStoreRepo
	financeRepo  *fakeFinanceRepo
	registerRepo *fakeRegisterRepo
	registerSvc  RegisterService
	svc          MoneyFlowService
}

func newMoneyflowFixture() *moneyflowFixture {
	f := &moneyflowFixture{
		storeRepo:    newFakeStoreRepo(),
		financeRepo:  newFakeFinanceRepo(),
		registerRepo: newFakeRegisterRepo(),
	}
	finance := NewFinanceService(f.financeRepo, f.storeRepo)
	f.registerSvc = NewRegisterService(f.registerRepo, f.storeRepo, newFakeSaleRepo(), finance)
	f.svc = NewMoneyFlowService(finance, f.financeRepo, f.storeRepo, f.registerRepo)
	return f
}

func TestCashExpenseDebitsLedgerAndFloat(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.registerSvc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	resp, err := f.svc.RecordExpense(context.Background(), userID, dto.ExpenseRequest{
		StoreID:       store.ID.String(),
		Amount:        50_000,
		Category:      "supplies",
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	assert.False(t, resp.CashSyncFailed)
	assert.Equal(t, model.DirectionDebit, resp.Direction)
	// Open balance 800,000 after the float draw, minus the expense.
	assert.Equal(t, int64(750_000), store.Balance)
	assert.Equal(t, int64(150_000), f.registerRepo.regs[regID].AvailableAmount)
	require.NotNil(t, resp.CashRegisterID)
	assert.Equal(t, regID.String(), *resp.CashRegisterID)
}

func TestCashExpenseWithoutOpenRegisterRejected(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(1_000_000)

	_, err := f.svc.RecordExpense(context.Background(), uuid.New(), dto.ExpenseRequest{
		StoreID:       store.ID.String(),
		Amount:        50_000,
		Category:      "supplies",
		PaymentMethod: model.PaymentCash,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Empty(t, f.financeRepo.txs)
}

func TestNonCashExpenseSkipsRegister(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(1_000_000)

	resp, err := f.svc.RecordExpense(context.Background(), uuid.New(), dto.ExpenseRequest{
		StoreID:       store.ID.String(),
		Amount:        300_000,
		Category:      "rent",
		PaymentMethod: model.PaymentTransfer,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.CashRegisterID)
	assert.Equal(t, int64(700_000), store.Balance)
}

// The expense commits on the ledger even when the float cannot cover it; the
// discrepancy is surfaced through cash_sync_failed instead of rolling back.
func TestCashExpenseFloatShortfallFlagsSyncFailure(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.registerSvc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 30_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	resp, err := f.svc.RecordExpense(context.Background(), userID, dto.ExpenseRequest{
		StoreID:       store.ID.String(),
		Amount:        50_000,
		Category:      "supplies",
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	assert.True(t, resp.CashSyncFailed)
	assert.Equal(t, int64(920_000), store.Balance, "the ledger debit stands")
	assert.Equal(t, int64(30_000), f.registerRepo.regs[regID].AvailableAmount, "the float is untouched")
}

func TestRevenueCreditsLedger(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(100_000)

	resp, err := f.svc.RecordRevenue(context.Background(), uuid.New(), dto.RevenueRequest{
		StoreID:  store.ID.String(),
		Amount:   250_000,
		Category: "equipment_sale",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DirectionCredit, resp.Direction)
	assert.Equal(t, int64(350_000), store.Balance)
}

func TestRemoveExpenseCreatesReversalOnce(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	recorded, err := f.svc.RecordExpense(context.Background(), userID, dto.ExpenseRequest{
		StoreID:       store.ID.String(),
		Amount:        200_000,
		Category:      "rent",
		PaymentMethod: model.PaymentTransfer,
	})
	require.NoError(t, err)
	txID := uuid.MustParse(recorded.ID)

	reversal, err := f.svc.Remove(context.Background(), userID, txID)
	require.NoError(t, err)
	assert.Equal(t, model.DirectionCredit, reversal.Direction)
	assert.Equal(t, "reversal:"+recorded.ID, reversal.Reference)
	assert.Equal(t, int64(1_000_000), store.Balance)

	// Original rows are immutable: two entries now, none deleted.
	assert.Len(t, f.financeRepo.txs, 2)

	_, err = f.svc.Remove(context.Background(), userID, txID)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestRemoveRevenueDebitsBack(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(0)
	userID := uuid.New()

	recorded, err := f.svc.RecordRevenue(context.Background(), userID, dto.RevenueRequest{
		StoreID:  store.ID.String(),
		Amount:   80_000,
		Category: "misc",
	})
	require.NoError(t, err)

	_, err = f.svc.Remove(context.Background(), userID, uuid.MustParse(recorded.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), store.Balance)
}

// Reversing a revenue the store has already spent must not drive the balance
// negative.
func TestRemoveRevenueInsufficientBalanceRejected(t *testing.T) {
	f := newMoneyflowFixture()
	store := f.storeRepo.add(0)
	userID := uuid.New()

	recorded, err := f.svc.RecordRevenue(context.Background(), userID, dto.RevenueRequest{
		StoreID:  store.ID.String(),
		Amount:   80_000,
		Category: "misc",
	})
	require.NoError(t, err)

	// Spend the revenue.
	_, err = f.svc.RecordExpense(context.Background(), userID, dto.ExpenseRequest{
		StoreID:       store.ID.String(),
		Amount:        60_000,
		Category:      "supplies",
		PaymentMethod: model.PaymentTransfer,
	})
	require.NoError(t, err)

	_, err = f.svc.Remove(context.Background(), userID, uuid.MustParse(recorded.ID))
	require.Error(t, err)
	assert.Equal(t, apperr.InsufficientResource, apperr.KindOf(err))
	assert.Equal(t, int64(20_000), store.Balance)
}
