package service

import (
	"context"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MoneyFlowService records business expenses and revenues against the store
// finance ledger, keeping the cash register float in sync for CASH expenses.
type MoneyFlowService interface {
	RecordExpense(ctx context.Context, userID uuid.UUID, req dto.ExpenseRequest) (*dto.StoreTransactionResponse, error)
	RecordRevenue(ctx context.Context, userID uuid.UUID, req dto.RevenueRequest) (*dto.StoreTransactionResponse, error)
	// Remove emits the inverse ledger entry instead of deleting history.
	Remove(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) (*dto.StoreTransactionResponse, error)
}

type moneyFlowService struct {
	finance      FinanceService
	financeRepo  repository.FinanceRepository
	storeRepo    repository.StoreRepository
	registerRepo repository.RegisterRepository
}

func NewMoneyFlowService(
	finance FinanceService,
	financeRepo repository.FinanceRepository,
	storeRepo repository.StoreRepository,
	registerRepo repository.RegisterRepository,
) MoneyFlowService {
	return &moneyFlowService{
		finance:      finance,
		financeRepo:  financeRepo,
		storeRepo:    storeRepo,
		registerRepo: registerRepo,
	}
}

// ── RecordExpense ─────────────────────────────────────────────────────────────
// The ledger debit is the primary step and commits on its own. The cash float
// subtraction is a secondary step: if it fails, the expense is NOT rolled back
// — the discrepancy is logged and surfaced through cash_sync_failed.

func (s *moneyFlowService) RecordExpense(ctx context.Context, userID uuid.UUID, req dto.ExpenseRequest) (*dto.StoreTransactionResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid store_id")
	}
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "store %s not found", req.StoreID)
	}
	if !store.IsActive {
		return nil, apperr.New(apperr.Validation, "store is not active")
	}

	var reg *model.CashRegister
	if req.PaymentMethod == model.PaymentCash {
		if req.CashRegisterID != "" {
			rid, err := uuid.Parse(req.CashRegisterID)
			if err != nil {
				return nil, apperr.New(apperr.Validation, "invalid cash_register_id")
			}
			reg, err = s.registerRepo.FindByID(ctx, rid)
			if err != nil {
				return nil, apperr.Newf(apperr.NotFound, "register %s not found", req.CashRegisterID)
			}
			if reg.StoreID != storeID {
				return nil, apperr.New(apperr.Validation, "register does not belong to this store")
			}
			if reg.Status != model.RegisterOpen {
				return nil, apperr.New(apperr.InvalidStateTransition, "register is not open")
			}
		} else {
			reg, err = s.registerRepo.FindOpenByUserAndStore(ctx, userID, storeID)
			if err != nil {
				return nil, err
			}
			if reg == nil {
				return nil, apperr.New(apperr.NotFound, "no open register for a cash expense")
			}
		}
	}

	t := &model.StoreTransaction{
		StoreID:     storeID,
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Reference:   req.Reference,
	}
	if reg != nil {
		t.CashRegisterID = &reg.ID
	}
	if err := s.finance.Debit(ctx, t); err != nil {
		return nil, err
	}

	resp := transactionToResponse(t)
	if reg != nil {
		ok, err := s.registerRepo.SubtractAvailableTx(s.registerRepo.DB(), reg.ID, req.Amount)
		if err != nil || !ok {
			log.Error().
				Str("transaction", t.ID.String()).
				Str("register", reg.ID.String()).
				Int64("amount", req.Amount).
				Err(err).
				Msg("expense committed but cash float was not decreased")
			resp.CashSyncFailed = true
		}
	}
	return resp, nil
}

// ── RecordRevenue ─────────────────────────────────────────────────────────────
// Mirror of RecordExpense using a credit; revenues are not drawn from the
// float, so no register sync is needed.

func (s *moneyFlowService) RecordRevenue(ctx context.Context, userID uuid.UUID, req dto.RevenueRequest) (*dto.StoreTransactionResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid store_id")
	}
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "store %s not found", req.StoreID)
	}
	if !store.IsActive {
		return nil, apperr.New(apperr.Validation, "store is not active")
	}

	t := &model.StoreTransaction{
		StoreID:     storeID,
		UserID:      userID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Reference:   req.Reference,
	}
	if err := s.finance.Credit(ctx, t); err != nil {
		return nil, err
	}
	return transactionToResponse(t), nil
}

// ── Remove ────────────────────────────────────────────────────────────────────
// Ledger rows are immutable: removal emits a compensating entry in the
// opposite direction referencing the original. A cash expense that decreased a
// register float gets the amount added back when the register is still open.

func (s *moneyFlowService) Remove(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) (*dto.StoreTransactionResponse, error) {
	original, err := s.financeRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "transaction %s not found", transactionID)
	}
	reversed, err := s.financeRepo.HasReversal(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if reversed {
		return nil, apperr.New(apperr.Conflict, "transaction has already been reversed")
	}

	inverse := &model.StoreTransaction{
		StoreID:        original.StoreID,
		UserID:         userID,
		Amount:         original.Amount,
		Category:       original.Category,
		Description:    "reversal of " + original.ID.String(),
		Reference:      "reversal:" + original.ID.String(),
		CashRegisterID: original.CashRegisterID,
	}

	txErr := runTx(ctx, s.financeRepo.DB(), func(tx *gorm.DB) error {
		switch original.Direction {
		case model.DirectionDebit:
			// Reversing an expense restores funds.
			if err := s.finance.CreditTx(tx, inverse); err != nil {
				return err
			}
			if original.CashRegisterID != nil {
				ok, err := s.registerRepo.AddAvailableTx(tx, *original.CashRegisterID, original.Amount)
				if err != nil {
					return err
				}
				if !ok {
					log.Warn().
						Str("transaction", original.ID.String()).
						Str("register", original.CashRegisterID.String()).
						Msg("cash float not restored: register already closed")
				}
			}
			return nil
		case model.DirectionCredit:
			// Reversing a revenue debits the ledger; must not drive the balance negative.
			return s.finance.DebitTx(tx, inverse)
		default:
			return apperr.Newf(apperr.Validation, "unknown direction %q", original.Direction)
		}
	})
	if txErr != nil {
		return nil, txErr
	}

	return transactionToResponse(inverse), nil
}
