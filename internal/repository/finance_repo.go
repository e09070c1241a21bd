package repository

import (
	"context"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinanceRepository owns the append-only store transaction ledger.
// Rows are only ever inserted; reversals are new rows referencing the original.
type FinanceRepository interface {
	CreateTransactionTx(tx *gorm.DB, t *model.StoreTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StoreTransaction, error)
	// HasReversal reports whether a compensating entry already references id.
	HasReversal(ctx context.Context, id uuid.UUID) (bool, error)
	// SumByStore recomputes the balance from the ledger (signed sum).
	SumByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
	List(ctx context.Context, filter dto.StoreTransactionFilter) ([]model.StoreTransaction, int64, error)
	DB() *gorm.DB
}

type financeRepo struct{ db *gorm.DB }

func NewFinanceRepository(db *gorm.DB) FinanceRepository { return &financeRepo{db: db} }

func (r *financeRepo) DB() *gorm.DB { return r.db }

func (r *financeRepo) CreateTransactionTx(tx *gorm.DB, t *model.StoreTransaction) error {
	return tx.Create(t).Error
}

func (r *financeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StoreTransaction, error) {
	var t model.StoreTransaction
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *financeRepo) HasReversal(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StoreTransaction{}).
		Where("reference = ?", "reversal:"+id.String()).Count(&count).Error
	return count > 0, err
}

func (r *financeRepo) SumByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.StoreTransaction{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount ELSE -amount END), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *financeRepo) List(ctx context.Context, filter dto.StoreTransactionFilter) ([]model.StoreTransaction, int64, error) {
	var txs []model.StoreTransaction
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StoreTransaction{})
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Direction != "" {
		q = q.Where("direction = ?", filter.Direction)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&txs).Error
	return txs, total, err
}
