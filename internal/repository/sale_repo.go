package repository

import (
	"context"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	// NextSaleNumberTx bumps the per-month counter row and returns the new
	// value, atomically. Safe under concurrent sale creation.
	NextSaleNumberTx(tx *gorm.DB, period string) (int, error)
	CountByRegister(ctx context.Context, registerID uuid.UUID) (int64, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("User").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) NextSaleNumberTx(tx *gorm.DB, period string) (int, error) {
	var num int
	err := tx.Raw(`
		INSERT INTO sale_counters (period, last_number) VALUES (?, 1)
		ON CONFLICT (period) DO UPDATE SET last_number = sale_counters.last_number + 1
		RETURNING last_number
	`, period).Scan(&num).Error
	return num, err
}

func (r *saleRepo) CountByRegister(ctx context.Context, registerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("cash_register_id = ?", registerID).Count(&count).Error
	return count, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}
