package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is a physical point of sale. Balance is a cached running total of the
// store's transaction ledger, maintained inside the same transaction as every
// ledger insert — it is a cache of the log, never a second source of truth.
type Store struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"index;not null"`
	Address  *string
	IsActive bool `gorm:"not null;default:true"`
	// Balance in the smallest currency unit. Never negative: debits are guarded
	// by a conditional UPDATE that checks the balance before applying.
	Balance   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
