package service

import (
	"context"
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterService runs the cash register session state machine (OPEN → CLOSED,
// CLOSED terminal). Uniqueness policy: one OPEN register per (user, store).
type RegisterService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error)
	// UpdateAvailable is the manual float adjustment, permitted only while OPEN.
	UpdateAvailable(ctx context.Context, registerID uuid.UUID, req dto.RegisterAdjustRequest) error
	Close(ctx context.Context, userID uuid.UUID, role string, registerID uuid.UUID, req dto.CloseRegisterRequest) (*dto.RegisterResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, role string, registerID uuid.UUID) error
	Get(ctx context.Context, registerID uuid.UUID) (*dto.RegisterResponse, error)
	GetActive(ctx context.Context, userID, storeID uuid.UUID) (*dto.RegisterResponse, error)
	History(ctx context.Context, storeID string, page, limit int) (*dto.RegisterListResponse, error)

	// Called by SaleService inside the sale transaction.
	AddFloatTx(tx *gorm.DB, registerID uuid.UUID, amount int64) error
	SubtractFloatTx(ctx context.Context, tx *gorm.DB, registerID uuid.UUID, amount int64) error
	// ValidateOpenForSale checks the register is OPEN, belongs to the store,
	// and is owned by the caller.
	ValidateOpenForSale(ctx context.Context, registerID, storeID, userID uuid.UUID) error
}

type registerService struct {
	repo      repository.RegisterRepository
	storeRepo repository.StoreRepository
	saleRepo  repository.SaleRepository
	finance   FinanceService
}

func NewRegisterService(
	repo repository.RegisterRepository,
	storeRepo repository.StoreRepository,
	saleRepo repository.SaleRepository,
	finance FinanceService,
) RegisterService {
	return &registerService{repo: repo, storeRepo: storeRepo, saleRepo: saleRepo, finance: finance}
}

// ── Open ──────────────────────────────────────────────────────────────────────
// The opening float is drawn from the store finance ledger. The debit and the
// register insert commit together: a failed debit leaves no register created.

func (s *registerService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid store_id")
	}
	if req.OpeningAmount < 0 {
		return nil, apperr.New(apperr.Validation, "opening_amount must be >= 0")
	}

	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "store %s not found", req.StoreID)
	}
	if !store.IsActive {
		return nil, apperr.New(apperr.Validation, "store is not active")
	}

	if existing, err := s.repo.FindOpenByUserAndStore(ctx, userID, storeID); err == nil && existing != nil {
		return nil, apperr.New(apperr.Conflict, "an open register already exists for this user in this store")
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	reg := &model.CashRegister{
		StoreID:         storeID,
		UserID:          userID,
		Status:          model.RegisterOpen,
		OpeningAmount:   req.OpeningAmount,
		AvailableAmount: req.OpeningAmount,
		Notes:           notes,
		OpenedAt:        time.Now().UTC(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.OpeningAmount > 0 {
			debit := &model.StoreTransaction{
				StoreID:     storeID,
				UserID:      userID,
				Amount:      req.OpeningAmount,
				Category:    "register_opening",
				Description: "cash drawer opening float",
			}
			if err := s.finance.DebitTx(tx, debit); err != nil {
				return err
			}
		}
		return s.repo.CreateTx(tx, reg)
	})
	if txErr != nil {
		return nil, txErr
	}

	return registerToResponse(reg), nil
}

// ── UpdateAvailable ───────────────────────────────────────────────────────────
// Manual ADD/SUBTRACT on the float. The conditional update serializes
// concurrent calls against the same register: no lost updates, and SUBTRACT
// never drives the float negative.

func (s *registerService) UpdateAvailable(ctx context.Context, registerID uuid.UUID, req dto.RegisterAdjustRequest) error {
	reg, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		return apperr.Newf(apperr.NotFound, "register %s not found", registerID)
	}
	if reg.Status != model.RegisterOpen {
		return apperr.New(apperr.InvalidStateTransition, "register is closed")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		switch req.Op {
		case "ADD":
			return s.AddFloatTx(tx, registerID, req.Amount)
		case "SUBTRACT":
			return s.SubtractFloatTx(ctx, tx, registerID, req.Amount)
		default:
			return apperr.Newf(apperr.Validation, "unknown op %q", req.Op)
		}
	})
}

func (s *registerService) AddFloatTx(tx *gorm.DB, registerID uuid.UUID, amount int64) error {
	ok, err := s.repo.AddAvailableTx(tx, registerID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.InvalidStateTransition, "register is not open")
	}
	return nil
}

func (s *registerService) SubtractFloatTx(ctx context.Context, tx *gorm.DB, registerID uuid.UUID, amount int64) error {
	ok, err := s.repo.SubtractAvailableTx(tx, registerID, amount)
	if err != nil {
		return err
	}
	if !ok {
		// Distinguish a closed register from an insufficient float for the caller.
		reg, ferr := s.repo.FindByID(ctx, registerID)
		if ferr == nil && reg.Status != model.RegisterOpen {
			return apperr.New(apperr.InvalidStateTransition, "register is not open")
		}
		return apperr.New(apperr.InsufficientResource, "cash float does not cover the amount")
	}
	return nil
}

// ── Close ─────────────────────────────────────────────────────────────────────
// expectedAmount := live float; difference := closing − expected. A nonzero
// difference requires an explanation in notes. The conditional update makes a
// second close of the same register fail with InvalidStateTransition.

func (s *registerService) Close(ctx context.Context, userID uuid.UUID, role string, registerID uuid.UUID, req dto.CloseRegisterRequest) (*dto.RegisterResponse, error) {
	reg, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "register %s not found", registerID)
	}
	if reg.Status != model.RegisterOpen {
		return nil, apperr.New(apperr.InvalidStateTransition, "register is already closed")
	}
	if reg.UserID != userID && role != "admin" && role != "manager" {
		return nil, apperr.New(apperr.Forbidden, "only the owner or an administrator can close this register")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-read under a row lock: the float may have moved since the
		// pre-checks (a cash sale committing meanwhile), and the frozen
		// expected amount must include every committed mutation.
		locked, err := s.repo.FindByIDForUpdateTx(tx, registerID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "register %s not found", registerID)
		}
		if locked.Status != model.RegisterOpen {
			return apperr.New(apperr.InvalidStateTransition, "register is already closed")
		}

		expected := locked.AvailableAmount
		difference := req.ClosingAmount - expected
		class := classifyDeviation(difference, expected)

		if difference != 0 && req.Notes == "" {
			return apperr.New(apperr.Validation, "closing discrepancy requires an explanation in notes")
		}
		if class == model.DeviationCritical && req.Notes == "" {
			return apperr.New(apperr.Validation, "critical deviation requires supervisor notes")
		}

		now := time.Now().UTC()
		locked.ClosingAmount = &req.ClosingAmount
		locked.ExpectedAmount = &expected
		locked.Difference = &difference
		locked.DeviationClass = &class
		locked.ClosedAt = &now
		if req.Notes != "" {
			notes := req.Notes
			locked.Notes = &notes
		}

		ok, err := s.repo.CloseTx(tx, locked)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.InvalidStateTransition, "register is already closed")
		}
		reg = locked
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	reg.Status = model.RegisterClosed
	return registerToResponse(reg), nil
}

// ── Delete ────────────────────────────────────────────────────────────────────
// Permitted only for CLOSED registers with zero associated sales. A nonzero
// frozen float is credited back to the store finance ledger so funds are never
// silently destroyed.

func (s *registerService) Delete(ctx context.Context, userID uuid.UUID, role string, registerID uuid.UUID) error {
	reg, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		return apperr.Newf(apperr.NotFound, "register %s not found", registerID)
	}
	if role != "admin" {
		return apperr.New(apperr.Forbidden, "only an administrator can delete a register")
	}
	if reg.Status != model.RegisterClosed {
		return apperr.New(apperr.InvalidStateTransition, "only closed registers can be deleted")
	}
	count, err := s.saleRepo.CountByRegister(ctx, registerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Newf(apperr.Conflict, "register has %d associated sales", count)
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if reg.AvailableAmount > 0 {
			credit := &model.StoreTransaction{
				StoreID:        reg.StoreID,
				UserID:         userID,
				Amount:         reg.AvailableAmount,
				Category:       "register_deletion",
				Description:    "returned float of deleted register",
				Reference:      "register:" + registerID.String(),
				CashRegisterID: &reg.ID,
			}
			if err := s.finance.CreditTx(tx, credit); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(tx, registerID)
	})
}

// ── ValidateOpenForSale ───────────────────────────────────────────────────────

func (s *registerService) ValidateOpenForSale(ctx context.Context, registerID, storeID, userID uuid.UUID) error {
	reg, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		return apperr.Newf(apperr.NotFound, "register %s not found", registerID)
	}
	if reg.Status != model.RegisterOpen {
		return apperr.New(apperr.InvalidStateTransition, "register is not open")
	}
	if reg.StoreID != storeID {
		return apperr.New(apperr.Validation, "register does not belong to this store")
	}
	if reg.UserID != userID {
		return apperr.New(apperr.Forbidden, "register is owned by another user")
	}
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *registerService) Get(ctx context.Context, registerID uuid.UUID) (*dto.RegisterResponse, error) {
	reg, err := s.repo.FindByID(ctx, registerID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "register %s not found", registerID)
	}
	return registerToResponse(reg), nil
}

func (s *registerService) GetActive(ctx context.Context, userID, storeID uuid.UUID) (*dto.RegisterResponse, error) {
	reg, err := s.repo.FindOpenByUserAndStore(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperr.New(apperr.NotFound, "no open register for this user in this store")
	}
	return registerToResponse(reg), nil
}

func (s *registerService) History(ctx context.Context, storeID string, page, limit int) (*dto.RegisterListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	regs, total, err := s.repo.List(ctx, storeID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RegisterResponse, 0, len(regs))
	for _, r := range regs {
		items = append(items, *registerToResponse(&r))
	}
	return &dto.RegisterListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// classifyDeviation returns "normal" | "warning" | "critical" by the absolute
// difference as a percentage of the expected amount.
// normal: <= 1%, warning: <= 5%, critical: > 5%.
func classifyDeviation(difference, expected int64) string {
	if expected == 0 {
		if difference == 0 {
			return model.DeviationNormal
		}
		return model.DeviationCritical
	}
	pct := decimal.NewFromInt(difference).
		Div(decimal.NewFromInt(expected)).
		Mul(decimal.NewFromInt(100)).
		Abs()
	switch {
	case pct.LessThanOrEqual(decimal.NewFromInt(1)):
		return model.DeviationNormal
	case pct.LessThanOrEqual(decimal.NewFromInt(5)):
		return model.DeviationWarning
	default:
		return model.DeviationCritical
	}
}

func registerToResponse(r *model.CashRegister) *dto.RegisterResponse {
	resp := &dto.RegisterResponse{
		ID:              r.ID.String(),
		StoreID:         r.StoreID.String(),
		UserID:          r.UserID.String(),
		Status:          r.Status,
		OpeningAmount:   r.OpeningAmount,
		AvailableAmount: r.AvailableAmount,
		ClosingAmount:   r.ClosingAmount,
		ExpectedAmount:  r.ExpectedAmount,
		Difference:      r.Difference,
		DeviationClass:  r.DeviationClass,
		Notes:           r.Notes,
		OpenedAt:        r.OpenedAt.UTC().Format(time.RFC3339),
	}
	if r.ClosedAt != nil {
		t := r.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
