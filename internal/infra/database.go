package infra

import (
	"fmt"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// throwaway container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.Product{},
		&model.StockEntry{},
		&model.StockMovement{},
		&model.StoreTransaction{},
		&model.CashRegister{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SaleCounter{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The partial unique index is the database-level backstop for the
// one-open-register-per-(user,store) rule the service layer enforces.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_registers_one_open
		     ON cash_registers (user_id, store_id)
		     WHERE status = 'OPEN'`,
		`CREATE INDEX IF NOT EXISTS idx_store_transactions_store_created
		     ON store_transactions (store_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_movements_product_store
		     ON stock_movements (product_id, store_id)`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
