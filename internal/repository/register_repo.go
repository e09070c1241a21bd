package repository

import (
	"context"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterRepository interface {
	CreateTx(tx *gorm.DB, r *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	// FindByIDForUpdateTx re-reads the row under a FOR UPDATE lock so the
	// caller's snapshot cannot be outdated by a concurrent float mutation
	// before the closing UPDATE lands.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashRegister, error)
	// FindOpenByUserAndStore returns nil when the user has no open register in
	// the store (one-open-per-user-per-store uniqueness policy).
	FindOpenByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (*model.CashRegister, error)
	// AddAvailableTx / SubtractAvailableTx mutate the float with a single
	// conditional UPDATE guarded on status = OPEN (and, for subtract, on the
	// float covering the amount). Returns false with no mutation otherwise —
	// concurrent calls against the same register serialize on the row.
	AddAvailableTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error)
	SubtractAvailableTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error)
	// CloseTx persists the closing fields and flips status to CLOSED in one
	// conditional UPDATE. Returns false when the register was not OPEN.
	CloseTx(tx *gorm.DB, r *model.CashRegister) (bool, error)
	// DeleteTx removes the row inside the caller's transaction so the delete
	// and its compensating ledger credit commit or roll back together.
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, storeID string, page, limit int) ([]model.CashRegister, int64, error)
	DB() *gorm.DB
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) DB() *gorm.DB { return r.db }

func (r *registerRepo) CreateTx(tx *gorm.DB, reg *model.CashRegister) error {
	return tx.Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).First(&reg, id).Error
	return &reg, err
}

func (r *registerRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, id).Error
	return &reg, err
}

func (r *registerRepo) FindOpenByUserAndStore(ctx context.Context, userID, storeID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ? AND status = ?", userID, storeID, model.RegisterOpen).
		First(&reg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) AddAvailableTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	res := tx.Model(&model.CashRegister{}).
		Where("id = ? AND status = ?", id, model.RegisterOpen).
		Update("available_amount", gorm.Expr("available_amount + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *registerRepo) SubtractAvailableTx(tx *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	res := tx.Model(&model.CashRegister{}).
		Where("id = ? AND status = ? AND available_amount >= ?", id, model.RegisterOpen, amount).
		Update("available_amount", gorm.Expr("available_amount - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *registerRepo) CloseTx(tx *gorm.DB, reg *model.CashRegister) (bool, error) {
	res := tx.Model(&model.CashRegister{}).
		Where("id = ? AND status = ?", reg.ID, model.RegisterOpen).
		Updates(map[string]interface{}{
			"status":          model.RegisterClosed,
			"closing_amount":  reg.ClosingAmount,
			"expected_amount": reg.ExpectedAmount,
			"difference":      reg.Difference,
			"deviation_class": reg.DeviationClass,
			"notes":           reg.Notes,
			"closed_at":       reg.ClosedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *registerRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.CashRegister{}, id).Error
}

func (r *registerRepo) List(ctx context.Context, storeID string, page, limit int) ([]model.CashRegister, int64, error) {
	var regs []model.CashRegister
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashRegister{})
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&regs).Error
	return regs, total, err
}
