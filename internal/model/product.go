package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry referenced by stock entries and sale items.
// Stock quantities live in StockEntry, one row per (product, store).
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	// Price in the smallest currency unit.
	Price     int64 `gorm:"not null"`
	IsActive  bool  `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
