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

// StockService is the stock ledger: it owns per-(product,store) quantities and
// the append-only movement log. The entry mutation and its movement record are
// always written in the same transaction — never one without the other.
type StockService interface {
	Apply(ctx context.Context, userID uuid.UUID, req dto.StockMovementRequest) (*dto.StockMovementResponse, error)
	// InTx / OutTx are called by SaleService inside the sale transaction.
	InTx(ctx context.Context, tx *gorm.DB, productID, storeID, userID uuid.UUID, qty int, reference string) (*model.StockMovement, error)
	OutTx(ctx context.Context, tx *gorm.DB, productID, storeID, userID uuid.UUID, qty int, reference string) (*model.StockMovement, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type stockService struct {
	repo        repository.StockRepository
	productRepo repository.ProductRepository
}

func NewStockService(repo repository.StockRepository, productRepo repository.ProductRepository) StockService {
	return &stockService{repo: repo, productRepo: productRepo}
}

// ── Apply ─────────────────────────────────────────────────────────────────────
// Dispatches on movement type. Each branch runs as one atomic unit.

func (s *stockService) Apply(ctx context.Context, userID uuid.UUID, req dto.StockMovementRequest) (*dto.StockMovementResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid product_id")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, apperr.Newf(apperr.NotFound, "product %s not found", req.ProductID)
	}

	var mov *model.StockMovement
	switch req.Type {
	case model.MovementIn, model.MovementOut:
		storeID, err := uuid.Parse(req.StoreID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid store_id")
		}
		if req.Quantity <= 0 {
			return nil, apperr.New(apperr.Validation, "quantity must be positive")
		}
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			if req.Type == model.MovementIn {
				mov, err = s.InTx(ctx, tx, productID, storeID, userID, req.Quantity, req.Reference)
			} else {
				mov, err = s.OutTx(ctx, tx, productID, storeID, userID, req.Quantity, req.Reference)
			}
			return err
		})
		if txErr != nil {
			return nil, txErr
		}

	case model.MovementTransfer:
		fromID, err := uuid.Parse(req.FromStoreID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid from_store_id")
		}
		toID, err := uuid.Parse(req.ToStoreID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid to_store_id")
		}
		if fromID == toID {
			return nil, apperr.New(apperr.Validation, "transfer requires two distinct stores")
		}
		if req.Quantity <= 0 {
			return nil, apperr.New(apperr.Validation, "quantity must be positive")
		}
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			mov, err = s.transferTx(tx, productID, fromID, toID, userID, req.Quantity, req.Reference)
			return err
		})
		if txErr != nil {
			return nil, txErr
		}

	case model.MovementAdjustment:
		storeID, err := uuid.Parse(req.StoreID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid store_id")
		}
		if req.NewQuantity == nil || *req.NewQuantity < 0 {
			return nil, apperr.New(apperr.Validation, "new_quantity is required and must be >= 0")
		}
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			mov, err = s.adjustTx(tx, productID, storeID, userID, *req.NewQuantity, req.Reference)
			return err
		})
		if txErr != nil {
			return nil, txErr
		}

	default:
		return nil, apperr.Newf(apperr.Validation, "unknown movement type %q", req.Type)
	}

	return movementToResponse(mov), nil
}

// ── InTx ──────────────────────────────────────────────────────────────────────
// Create-or-increment the entry and append an IN movement.

func (s *stockService) InTx(_ context.Context, tx *gorm.DB, productID, storeID, userID uuid.UUID, qty int, reference string) (*model.StockMovement, error) {
	before := 0
	if entry, err := s.repo.FindEntryTx(tx, productID, storeID); err == nil {
		before = entry.Quantity
	}
	if err := s.repo.UpsertIncrementTx(tx, productID, storeID, qty); err != nil {
		return nil, err
	}
	mov := &model.StockMovement{
		ProductID:      productID,
		StoreID:        storeID,
		Type:           model.MovementIn,
		Quantity:       qty,
		QuantityBefore: before,
		QuantityAfter:  before + qty,
		Reference:      reference,
		UserID:         userID,
	}
	if err := s.repo.CreateMovementTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── OutTx ─────────────────────────────────────────────────────────────────────
// The guarded decrement makes the quantity check and the subtraction one
// conditional UPDATE, so two concurrent sales cannot both observe quantity 5
// and independently subtract.

func (s *stockService) OutTx(_ context.Context, tx *gorm.DB, productID, storeID, userID uuid.UUID, qty int, reference string) (*model.StockMovement, error) {
	entry, err := s.repo.FindEntryTx(tx, productID, storeID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "no stock entry for product %s in store %s", productID, storeID)
	}
	if entry.Quantity < qty {
		return nil, apperr.Newf(apperr.InsufficientResource,
			"insufficient stock: have %d, requested %d", entry.Quantity, qty)
	}
	ok, err := s.repo.DecrementGuardedTx(tx, productID, storeID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent operation consumed the stock between the read and the update.
		return nil, apperr.Newf(apperr.InsufficientResource,
			"insufficient stock: have %d, requested %d", entry.Quantity, qty)
	}
	mov := &model.StockMovement{
		ProductID:      productID,
		StoreID:        storeID,
		Type:           model.MovementOut,
		Quantity:       qty,
		QuantityBefore: entry.Quantity,
		QuantityAfter:  entry.Quantity - qty,
		Reference:      reference,
		UserID:         userID,
	}
	if err := s.repo.CreateMovementTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── transferTx ────────────────────────────────────────────────────────────────
// OUT at source and IN at destination as one atomic unit, logged as exactly one
// TRANSFER movement referencing both stores. Conservation: the source decrement
// equals the destination increment.

func (s *stockService) transferTx(tx *gorm.DB, productID, fromID, toID, userID uuid.UUID, qty int, reference string) (*model.StockMovement, error) {
	src, err := s.repo.FindEntryTx(tx, productID, fromID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "no stock entry for product %s in store %s", productID, fromID)
	}
	if src.Quantity < qty {
		return nil, apperr.Newf(apperr.InsufficientResource,
			"insufficient stock at source: have %d, requested %d", src.Quantity, qty)
	}
	ok, err := s.repo.DecrementGuardedTx(tx, productID, fromID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Newf(apperr.InsufficientResource,
			"insufficient stock at source: have %d, requested %d", src.Quantity, qty)
	}
	if err := s.repo.UpsertIncrementTx(tx, productID, toID, qty); err != nil {
		return nil, err
	}
	mov := &model.StockMovement{
		ProductID:      productID,
		StoreID:        fromID,
		Type:           model.MovementTransfer,
		Quantity:       qty,
		QuantityBefore: src.Quantity,
		QuantityAfter:  src.Quantity - qty,
		FromStoreID:    &fromID,
		ToStoreID:      &toID,
		Reference:      reference,
		UserID:         userID,
	}
	if err := s.repo.CreateMovementTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── adjustTx ──────────────────────────────────────────────────────────────────
// Sets the entry to an absolute quantity; the log records the signed delta, not
// the absolute value, so the movement log stays a valid reconstruction source.

func (s *stockService) adjustTx(tx *gorm.DB, productID, storeID, userID uuid.UUID, newQty int, reference string) (*model.StockMovement, error) {
	before := 0
	if entry, err := s.repo.FindEntryTx(tx, productID, storeID); err == nil {
		before = entry.Quantity
	}
	if err := s.repo.SetQuantityTx(tx, productID, storeID, newQty); err != nil {
		return nil, err
	}
	mov := &model.StockMovement{
		ProductID:      productID,
		StoreID:        storeID,
		Type:           model.MovementAdjustment,
		Quantity:       newQty - before,
		QuantityBefore: before,
		QuantityAfter:  newQty,
		Reference:      reference,
		UserID:         userID,
	}
	if err := s.repo.CreateMovementTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── ListMovements ─────────────────────────────────────────────────────────────

func (s *stockService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movements, total, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, *movementToResponse(&m))
	}
	return &dto.StockMovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movementToResponse(m *model.StockMovement) *dto.StockMovementResponse {
	resp := &dto.StockMovementResponse{
		ID:             m.ID.String(),
		ProductID:      m.ProductID.String(),
		StoreID:        m.StoreID.String(),
		Type:           m.Type,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reference:      m.Reference,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.FromStoreID != nil {
		from := m.FromStoreID.String()
		resp.FromStoreID = &from
	}
	if m.ToStoreID != nil {
		to := m.ToStoreID.String()
		resp.ToStoreID = &to
	}
	return resp
}
