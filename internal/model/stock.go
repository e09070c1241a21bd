package model

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry holds the live quantity of one product in one store.
// Quantity is never allowed below zero; decrements run as conditional updates.
type StockEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_store,priority:1"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_store,priority:2"`
	Quantity  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockEntry) TableName() string { return "stock_entries" }

// Stock movement types.
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementTransfer   = "TRANSFER"
	MovementAdjustment = "ADJUSTMENT"
)

// StockMovement is an immutable event in the stock ledger.
// Movements are NEVER modified or deleted — corrections create inverse entries.
// Quantity is > 0 for IN/OUT/TRANSFER; for ADJUSTMENT it records the signed
// delta implied by the change so the log stays usable as a reconstruction source.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(20);not null"`
	Quantity  int       `gorm:"not null"`
	// QuantityBefore/QuantityAfter snapshot the entry at the source store.
	QuantityBefore int `gorm:"not null"`
	QuantityAfter  int `gorm:"not null"`
	// FromStoreID/ToStoreID are set for TRANSFER only.
	FromStoreID *uuid.UUID `gorm:"type:uuid"`
	ToStoreID   *uuid.UUID `gorm:"type:uuid"`
	Reference   string
	// UserID of the operator who triggered the movement.
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockMovement) TableName() string { return "stock_movements" }
