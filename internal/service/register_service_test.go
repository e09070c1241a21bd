package service

import (
	"context"
	"testing"
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type registerFixture struct {
	storeRepo    *fakeStoreRepo
	registerRepo *fakeRegisterRepo
	financeRepo  *fakeFinanceRepo
	saleRepo     *fakeSaleRepo
	svc          RegisterService
}

func newRegisterFixture() *registerFixture {
	f := &registerFixture{
		storeRepo:    newFakeStoreRepo(),
		registerRepo: newFakeRegisterRepo(),
		financeRepo:  newFakeFinanceRepo(),
		saleRepo:     newFakeSaleRepo(),
	}
	finance := NewFinanceService(f.financeRepo, f.storeRepo)
	f.svc = NewRegisterService(f.registerRepo, f.storeRepo, f.saleRepo, finance)
	return f
}

func TestOpenRegisterMovesFloatFromStore(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	resp, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID:       store.ID.String(),
		OpeningAmount: 200_000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(800_000), store.Balance)
	assert.Equal(t, int64(200_000), resp.AvailableAmount)
	assert.Equal(t, model.RegisterOpen, resp.Status)

	// The debit is on the ledger, tagged and traceable.
	require.Len(t, f.financeRepo.txs, 1)
	assert.Equal(t, model.DirectionDebit, f.financeRepo.txs[0].Direction)
	assert.Equal(t, "register_opening", f.financeRepo.txs[0].Category)
}

func TestOpenRegisterInsufficientStoreFunds(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(100_000)
	userID := uuid.New()

	_, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID:       store.ID.String(),
		OpeningAmount: 200_000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.InsufficientResource, apperr.KindOf(err))

	assert.Equal(t, int64(100_000), store.Balance)
	assert.Empty(t, f.registerRepo.regs, "a failed debit must leave no register created")
}

func TestOpenSecondRegisterSameUserStoreConflicts(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	_, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 100_000,
	})
	require.NoError(t, err)

	_, err = f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 100_000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestCloseComputesDifferenceAndDeviation(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	// Counted 199,000 against an expected 200,000: -0.5%, normal band.
	closed, err := f.svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{
		ClosingAmount: 199_000,
		Notes:         "one bill short after recount",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RegisterClosed, closed.Status)
	require.NotNil(t, closed.Difference)
	assert.Equal(t, int64(-1_000), *closed.Difference)
	require.NotNil(t, closed.ExpectedAmount)
	assert.Equal(t, int64(200_000), *closed.ExpectedAmount)
	require.NotNil(t, closed.DeviationClass)
	assert.Equal(t, model.DeviationNormal, *closed.DeviationClass)
}

func TestCloseDiscrepancyRequiresNotes(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	_, err = f.svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{
		ClosingAmount: 150_000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	// Register must still be open after the rejected close.
	reg := f.registerRepo.regs[regID]
	assert.Equal(t, model.RegisterOpen, reg.Status)
}

func TestCloseByOtherUserForbidden(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	owner := uuid.New()

	opened, err := f.svc.Open(context.Background(), owner, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	_, err = f.svc.Close(context.Background(), uuid.New(), "cashier", regID, dto.CloseRegisterRequest{
		ClosingAmount: 200_000,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// A manager may close on the owner's behalf.
	_, err = f.svc.Close(context.Background(), uuid.New(), "manager", regID, dto.CloseRegisterRequest{
		ClosingAmount: 200_000,
	})
	require.NoError(t, err)
}

func TestDoubleCloseFails(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	_, err = f.svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{ClosingAmount: 200_000})
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{ClosingAmount: 200_000})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidStateTransition, apperr.KindOf(err))
}

func TestFloatAdjustSubtractInsufficient(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 50_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	err = f.svc.UpdateAvailable(context.Background(), regID, dto.RegisterAdjustRequest{
		Amount: 60_000, Op: "SUBTRACT", Description: "bank deposit",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.InsufficientResource, apperr.KindOf(err))
	assert.Equal(t, int64(50_000), f.registerRepo.regs[regID].AvailableAmount)

	err = f.svc.UpdateAvailable(context.Background(), regID, dto.RegisterAdjustRequest{
		Amount: 30_000, Op: "SUBTRACT", Description: "bank deposit",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20_000), f.registerRepo.regs[regID].AvailableAmount)
}

func TestDeleteClosedRegisterReturnsFloat(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	// Deleting while open is rejected.
	err = f.svc.Delete(context.Background(), userID, "admin", regID)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidStateTransition, apperr.KindOf(err))

	_, err = f.svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{ClosingAmount: 200_000})
	require.NoError(t, err)

	// Non-admin cannot delete.
	err = f.svc.Delete(context.Background(), userID, "manager", regID)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	require.NoError(t, f.svc.Delete(context.Background(), userID, "admin", regID))
	assert.NotContains(t, f.registerRepo.regs, regID)
	assert.Equal(t, int64(1_000_000), store.Balance, "the frozen float returns to the store")
}

// registerRepoWithHook injects a concurrent float mutation between Close's
// pre-checks and its locked re-read.
type registerRepoWithHook struct {
	*fakeRegisterRepo
	beforeLockedRead func()
}

func (r *registerRepoWithHook) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashRegister, error) {
	if r.beforeLockedRead != nil {
		hook := r.beforeLockedRead
		r.beforeLockedRead = nil
		hook()
	}
	return r.fakeRegisterRepo.FindByIDForUpdateTx(tx, id)
}

// A cash sale committing between Close's first read and the closing UPDATE
// must land in the frozen expected amount: the honest drawer count closes with
// difference 0 instead of being flagged as a discrepancy.
func TestCloseFreezesConcurrentCashSaleIntoExpected(t *testing.T) {
	storeRepo := newFakeStoreRepo()
	financeRepo := newFakeFinanceRepo()
	hooked := &registerRepoWithHook{fakeRegisterRepo: newFakeRegisterRepo()}
	finance := NewFinanceService(financeRepo, storeRepo)
	svc := NewRegisterService(hooked, storeRepo, newFakeSaleRepo(), finance)

	store := storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	hooked.beforeLockedRead = func() {
		_, _ = hooked.fakeRegisterRepo.AddAvailableTx(nil, regID, 50_000)
	}

	closed, err := svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{
		ClosingAmount: 250_000,
	})
	require.NoError(t, err)

	require.NotNil(t, closed.ExpectedAmount)
	assert.Equal(t, int64(250_000), *closed.ExpectedAmount)
	require.NotNil(t, closed.Difference)
	assert.Zero(t, *closed.Difference)
}

// The compensating credit and the row delete are one unit of work: when the
// credit cannot be written, the register must survive.
func TestDeleteWithoutCreditKeepsRegister(t *testing.T) {
	f := newRegisterFixture()
	store := f.storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := f.svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 200_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	_, err = f.svc.Close(context.Background(), userID, "cashier", regID, dto.CloseRegisterRequest{ClosingAmount: 200_000})
	require.NoError(t, err)

	delete(f.storeRepo.stores, store.ID)

	err = f.svc.Delete(context.Background(), userID, "admin", regID)
	require.Error(t, err)
	assert.Contains(t, f.registerRepo.regs, regID, "a failed credit must leave the register in place")
}

// ctxRecordingRegisterRepo captures the context of the most recent FindByID.
type ctxRecordingRegisterRepo struct {
	*fakeRegisterRepo
	lastCtx context.Context
}

func (r *ctxRecordingRegisterRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	r.lastCtx = ctx
	return r.fakeRegisterRepo.FindByID(ctx, id)
}

type adjustCtxKey struct{}

// The closed-vs-insufficient disambiguation read inside SubtractFloatTx runs
// on the caller's context, not a fresh background one.
func TestSubtractFloatPropagatesCallerContext(t *testing.T) {
	storeRepo := newFakeStoreRepo()
	financeRepo := newFakeFinanceRepo()
	recording := &ctxRecordingRegisterRepo{fakeRegisterRepo: newFakeRegisterRepo()}
	finance := NewFinanceService(financeRepo, storeRepo)
	svc := NewRegisterService(recording, storeRepo, newFakeSaleRepo(), finance)

	store := storeRepo.add(1_000_000)
	userID := uuid.New()

	opened, err := svc.Open(context.Background(), userID, dto.OpenRegisterRequest{
		StoreID: store.ID.String(), OpeningAmount: 50_000,
	})
	require.NoError(t, err)
	regID := uuid.MustParse(opened.ID)

	ctx := context.WithValue(context.Background(), adjustCtxKey{}, "shift-close")
	err = svc.UpdateAvailable(ctx, regID, dto.RegisterAdjustRequest{
		Amount: 60_000, Op: "SUBTRACT", Description: "bank deposit",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.InsufficientResource, apperr.KindOf(err))

	// The last FindByID is the disambiguation read after the guarded update
	// reported no row.
	require.NotNil(t, recording.lastCtx)
	assert.Equal(t, "shift-close", recording.lastCtx.Value(adjustCtxKey{}))
}

func TestRegisterTimestampsRenderUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	openedAt := time.Date(2026, 3, 1, 14, 30, 0, 0, loc)
	closedAt := openedAt.Add(8 * time.Hour)

	reg := &model.CashRegister{
		ID:       uuid.New(),
		StoreID:  uuid.New(),
		UserID:   uuid.New(),
		Status:   model.RegisterClosed,
		OpenedAt: openedAt,
		ClosedAt: &closedAt,
	}
	resp := registerToResponse(reg)

	assert.Equal(t, "2026-03-01T09:30:00Z", resp.OpenedAt)
	require.NotNil(t, resp.ClosedAt)
	assert.Equal(t, "2026-03-01T17:30:00Z", *resp.ClosedAt)
}

func TestClassifyDeviation(t *testing.T) {
	cases := []struct {
		difference int64
		expected   int64
		want       string
	}{
		{0, 200_000, model.DeviationNormal},
		{-2_000, 200_000, model.DeviationNormal},    // 1%
		{-2_001, 200_000, model.DeviationWarning},   // just over 1%
		{10_000, 200_000, model.DeviationWarning},   // 5%
		{-10_001, 200_000, model.DeviationCritical}, // just over 5%
		{0, 0, model.DeviationNormal},
		{1, 0, model.DeviationCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classifyDeviation(c.difference, c.expected),
			"difference=%d expected=%d", c.difference, c.expected)
	}
}
