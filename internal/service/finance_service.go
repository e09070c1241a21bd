package service

import (
	"context"
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinanceService is the store finance ledger: an append-only transaction log
// plus the cached balance on the store row. The balance update and the ledger
// insert always happen in the same transaction, so the cache cannot drift from
// the log.
type FinanceService interface {
	CheckBalance(ctx context.Context, storeID uuid.UUID, amount int64) (bool, error)
	Debit(ctx context.Context, t *model.StoreTransaction) error
	Credit(ctx context.Context, t *model.StoreTransaction) error
	// Tx variants are called by RegisterService and MoneyFlowService inside
	// their own transactional boundaries.
	DebitTx(tx *gorm.DB, t *model.StoreTransaction) error
	CreditTx(tx *gorm.DB, t *model.StoreTransaction) error
	ListTransactions(ctx context.Context, filter dto.StoreTransactionFilter) (*dto.StoreTransactionListResponse, error)
}

type financeService struct {
	repo      repository.FinanceRepository
	storeRepo repository.StoreRepository
}

func NewFinanceService(repo repository.FinanceRepository, storeRepo repository.StoreRepository) FinanceService {
	return &financeService{repo: repo, storeRepo: storeRepo}
}

func (s *financeService) CheckBalance(ctx context.Context, storeID uuid.UUID, amount int64) (bool, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return false, apperr.Newf(apperr.NotFound, "store %s not found", storeID)
	}
	return store.Balance >= amount, nil
}

// DebitTx fails with InsufficientResource when the balance does not cover the
// amount; the check and the decrement are one conditional UPDATE, so the
// balance can never be observed negative.
func (s *financeService) DebitTx(tx *gorm.DB, t *model.StoreTransaction) error {
	if t.Amount <= 0 {
		return apperr.New(apperr.Validation, "amount must be positive")
	}
	ok, err := s.storeRepo.DebitBalanceTx(tx, t.StoreID, t.Amount)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.InsufficientResource,
			"store %s balance does not cover %d", t.StoreID, t.Amount)
	}
	t.Direction = model.DirectionDebit
	return s.repo.CreateTransactionTx(tx, t)
}

// CreditTx has no lower-bound check — credits restore funds.
func (s *financeService) CreditTx(tx *gorm.DB, t *model.StoreTransaction) error {
	if t.Amount <= 0 {
		return apperr.New(apperr.Validation, "amount must be positive")
	}
	if err := s.storeRepo.CreditBalanceTx(tx, t.StoreID, t.Amount); err != nil {
		return err
	}
	t.Direction = model.DirectionCredit
	return s.repo.CreateTransactionTx(tx, t)
}

func (s *financeService) Debit(ctx context.Context, t *model.StoreTransaction) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.DebitTx(tx, t)
	})
}

func (s *financeService) Credit(ctx context.Context, t *model.StoreTransaction) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.CreditTx(tx, t)
	})
}

func (s *financeService) ListTransactions(ctx context.Context, filter dto.StoreTransactionFilter) (*dto.StoreTransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	txs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreTransactionResponse, 0, len(txs))
	for _, t := range txs {
		items = append(items, *transactionToResponse(&t))
	}
	return &dto.StoreTransactionListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func transactionToResponse(t *model.StoreTransaction) *dto.StoreTransactionResponse {
	resp := &dto.StoreTransactionResponse{
		ID:          t.ID.String(),
		StoreID:     t.StoreID.String(),
		UserID:      t.UserID.String(),
		Amount:      t.Amount,
		Direction:   t.Direction,
		Category:    t.Category,
		Description: t.Description,
		Reference:   t.Reference,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.CashRegisterID != nil {
		id := t.CashRegisterID.String()
		resp.CashRegisterID = &id
	}
	return resp
}
