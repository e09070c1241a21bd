package repository

import (
	"context"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	// CreditBalanceTx increases the cached balance inside the caller's transaction.
	CreditBalanceTx(tx *gorm.DB, id uuid.UUID, amount int64) error
	// DebitBalanceTx decreases the cached balance only when it covers the amount.
	// Returns false (no mutation) when the balance is insufficient — the check and
	// the decrement are one conditional UPDATE, so concurrent debits cannot both
	// pass the check and drive the balance negative.
	DebitBalanceTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error)
}

type storeRepo struct{ db *gorm.DB }

func NewStoreRepository(db *gorm.DB) StoreRepository { return &storeRepo{db: db} }

func (r *storeRepo) Create(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *storeRepo) CreditBalanceTx(tx *gorm.DB, id uuid.UUID, amount int64) error {
	return tx.Model(&model.Store{}).Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

func (r *storeRepo) DebitBalanceTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	res := tx.Model(&model.Store{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
