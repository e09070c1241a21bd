package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type SaleService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	UpdateStatus(ctx context.Context, saleID uuid.UUID, userID uuid.UUID, newStatus string) (*dto.SaleResponse, error)
	Get(ctx context.Context, saleID uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo        repository.SaleRepository
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	stock       StockService
	register    RegisterService
	dispatcher  *worker.Dispatcher
}

func NewSaleService(
	repo repository.SaleRepository,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	stock StockService,
	register RegisterService,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:        repo,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		stock:       stock,
		register:    register,
		dispatcher:  dispatcher,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Validate-then-commit:
//   1. store active
//   2. register OPEN, same store, owned by the caller (when attached)
//   3. every line item checked against stock before any mutation
//   4. total = subtotal − discount + tax; amountPaid must cover it
//   5. sale number from the persisted per-month counter, inside the tx
//   6. one atomic unit: sale + items + stock OUT per item + cash float ADD
//   7. (async) receipt email — fire & forget

func (s *saleService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid store_id")
	}
	if req.Discount < 0 || req.Tax < 0 {
		return nil, apperr.New(apperr.Validation, "discount and tax must be >= 0")
	}

	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "store %s not found", req.StoreID)
	}
	if !store.IsActive {
		return nil, apperr.New(apperr.Validation, "store is not active")
	}

	var registerID *uuid.UUID
	if req.CashRegisterID != "" {
		rid, err := uuid.Parse(req.CashRegisterID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid cash_register_id")
		}
		if err := s.register.ValidateOpenForSale(ctx, rid, storeID, userID); err != nil {
			return nil, err
		}
		registerID = &rid
	}

	// Pre-flight item resolution: any single item failing aborts the whole
	// request before any mutation occurs.
	type resolvedItem struct {
		productID uuid.UUID
		name      string
		unitPrice int64
		quantity  int
		subtotal  int64
	}
	resolved := make([]resolvedItem, 0, len(req.Items))
	var subtotal int64

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid product_id")
		}
		if item.Quantity <= 0 {
			return nil, apperr.New(apperr.Validation, "item quantity must be positive")
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apperr.Newf(apperr.NotFound, "product %s not found", item.ProductID)
		}
		if !p.IsActive {
			return nil, apperr.Newf(apperr.Validation, "product %s is inactive and cannot be sold", p.Name)
		}
		entry, err := s.stockRepo.FindEntry(ctx, pid, storeID)
		if err != nil {
			return nil, apperr.Newf(apperr.NotFound, "no stock entry for product %s in this store", p.Name)
		}
		if entry.Quantity < item.Quantity {
			return nil, apperr.Newf(apperr.InsufficientResource,
				"insufficient stock for %s: have %d, requested %d", p.Name, entry.Quantity, item.Quantity)
		}
		lineSubtotal := p.Price * int64(item.Quantity)
		subtotal += lineSubtotal
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			unitPrice: p.Price,
			quantity:  item.Quantity,
			subtotal:  lineSubtotal,
		})
	}

	total := subtotal - req.Discount + req.Tax
	if total < 0 {
		return nil, apperr.New(apperr.Validation, "discount exceeds subtotal")
	}
	if req.AmountPaid < total {
		return nil, apperr.Newf(apperr.InsufficientResource,
			"amount paid %d does not cover total %d", req.AmountPaid, total)
	}
	change := req.AmountPaid - total

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The counter row lock serializes concurrent sales within a month, so
		// the generated numbers are unique without retry.
		period := time.Now().UTC().Format("200601")
		num, err := s.repo.NextSaleNumberTx(tx, period)
		if err != nil {
			return err
		}
		saleNumber := fmt.Sprintf("POS-%s-%04d", period, num)

		sale = model.Sale{
			SaleNumber:     saleNumber,
			StoreID:        storeID,
			UserID:         userID,
			CashRegisterID: registerID,
			Subtotal:       subtotal,
			Discount:       req.Discount,
			Tax:            req.Tax,
			Total:          total,
			PaymentMethod:  req.PaymentMethod,
			AmountPaid:     req.AmountPaid,
			Change:         change,
			Status:         model.SaleCompleted,
			Notes:          notes,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
				Subtotal:  r.subtotal,
			})
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		for _, r := range resolved {
			if _, err := s.stock.OutTx(ctx, tx, r.productID, storeID, userID, r.quantity, "sale:"+saleNumber); err != nil {
				return fmt.Errorf("stock out for %s: %w", r.name, err)
			}
		}

		if req.PaymentMethod == model.PaymentCash && registerID != nil {
			if err := s.register.AddFloatTx(tx, *registerID, total); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.dispatcher != nil && req.CustomerEmail != "" {
		payload := worker.ReceiptJobPayload{
			SaleID:  sale.ID.String(),
			ToEmail: req.CustomerEmail,
		}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Error().Err(err).Str("sale", sale.SaleNumber).Msg("failed to enqueue receipt job")
		}
	}

	resp := saleToResponse(&sale)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

// ── UpdateStatus ──────────────────────────────────────────────────────────────
// Legal transitions: PENDING→{COMPLETED, CANCELLED}, COMPLETED→REFUNDED.
// CANCELLED and REFUNDED restock every line item with compensating IN
// movements — the original OUT movements are never edited or deleted.

func (s *saleService) UpdateStatus(ctx context.Context, saleID uuid.UUID, userID uuid.UUID, newStatus string) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "sale %s not found", saleID)
	}
	if !legalSaleTransition(sale.Status, newStatus) {
		return nil, apperr.Newf(apperr.InvalidStateTransition,
			"cannot transition sale from %s to %s", sale.Status, newStatus)
	}

	compensate := newStatus == model.SaleCancelled || newStatus == model.SaleRefunded

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if compensate {
			ref := fmt.Sprintf("reversal:%s:%s", newStatus, sale.SaleNumber)
			for _, item := range sale.Items {
				if _, err := s.stock.InTx(ctx, tx, item.ProductID, sale.StoreID, userID, item.Quantity, ref); err != nil {
					return err
				}
			}
			// The cash taken at the drawer goes back out. A register that has
			// closed in the meantime cannot be mutated; the discrepancy is
			// surfaced in the log and settles at reconciliation.
			if sale.PaymentMethod == model.PaymentCash && sale.CashRegisterID != nil {
				if err := s.register.SubtractFloatTx(ctx, tx, *sale.CashRegisterID, sale.Total); err != nil {
					log.Warn().
						Str("sale", sale.SaleNumber).
						Str("register", sale.CashRegisterID.String()).
						Err(err).
						Msg("cash float not restored on sale reversal")
				}
			}
		}
		return s.repo.UpdateStatusTx(tx, saleID, newStatus)
	})
	if txErr != nil {
		return nil, txErr
	}

	sale.Status = newStatus
	return saleToResponse(sale), nil
}

func legalSaleTransition(from, to string) bool {
	switch from {
	case model.SalePending:
		return to == model.SaleCompleted || to == model.SaleCancelled
	case model.SaleCompleted:
		return to == model.SaleRefunded
	default:
		return false
	}
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, saleID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "sale %s not found", saleID)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, v := range sales {
		items = append(items, *saleToResponse(&v))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	resp := &dto.SaleResponse{
		ID:            v.ID.String(),
		SaleNumber:    v.SaleNumber,
		StoreID:       v.StoreID.String(),
		UserID:        v.UserID.String(),
		Items:         items,
		Subtotal:      v.Subtotal,
		Discount:      v.Discount,
		Tax:           v.Tax,
		Total:         v.Total,
		PaymentMethod: v.PaymentMethod,
		AmountPaid:    v.AmountPaid,
		Change:        v.Change,
		Status:        v.Status,
		CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.CashRegisterID != nil {
		id := v.CashRegisterID.String()
		resp.CashRegisterID = &id
	}
	return resp
}
