package repository

import (
	"context"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockRepository owns stock entries and the append-only movement log.
// The entry mutation and its movement record are always written inside the
// same transaction by the service layer — Tx methods require the live tx.
type StockRepository interface {
	FindEntry(ctx context.Context, productID, storeID uuid.UUID) (*model.StockEntry, error)
	FindEntryTx(tx *gorm.DB, productID, storeID uuid.UUID) (*model.StockEntry, error)
	// UpsertIncrementTx creates the entry or adds qty to it, atomically.
	UpsertIncrementTx(tx *gorm.DB, productID, storeID uuid.UUID, qty int) error
	// DecrementGuardedTx subtracts qty only when the entry covers it.
	// Returns false (no mutation) on insufficient quantity.
	DecrementGuardedTx(tx *gorm.DB, productID, storeID uuid.UUID, qty int) (bool, error)
	SetQuantityTx(tx *gorm.DB, productID, storeID uuid.UUID, qty int) error
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error)
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) FindEntry(ctx context.Context, productID, storeID uuid.UUID) (*model.StockEntry, error) {
	var e model.StockEntry
	err := r.db.WithContext(ctx).Where("product_id = ? AND store_id = ?", productID, storeID).First(&e).Error
	return &e, err
}

func (r *stockRepo) FindEntryTx(tx *gorm.DB, productID, storeID uuid.UUID) (*model.StockEntry, error) {
	var e model.StockEntry
	err := tx.Where("product_id = ? AND store_id = ?", productID, storeID).First(&e).Error
	return &e, err
}

func (r *stockRepo) UpsertIncrementTx(tx *gorm.DB, productID, storeID uuid.UUID, qty int) error {
	return tx.Exec(`
		INSERT INTO stock_entries (id, product_id, store_id, quantity, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, now(), now())
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET quantity = stock_entries.quantity + EXCLUDED.quantity, updated_at = now()
	`, productID, storeID, qty).Error
}

func (r *stockRepo) DecrementGuardedTx(tx *gorm.DB, productID, storeID uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.StockEntry{}).
		Where("product_id = ? AND store_id = ? AND quantity >= ?", productID, storeID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *stockRepo) SetQuantityTx(tx *gorm.DB, productID, storeID uuid.UUID, qty int) error {
	return tx.Exec(`
		INSERT INTO stock_entries (id, product_id, store_id, quantity, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, now(), now())
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
	`, productID, storeID, qty).Error
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListMovements(ctx context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movements).Error
	return movements, total, err
}
