package model

import (
	"time"

	"github.com/google/uuid"
)

// Transaction directions.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// StoreTransaction is an immutable event in the store finance ledger.
// Rows are NEVER updated or deleted — removing an expense/revenue emits a
// compensating entry in the opposite direction referencing the original.
type StoreTransaction struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `gorm:"type:uuid;not null"`
	// Amount in the smallest currency unit, always > 0; Direction carries the sign.
	Amount      int64  `gorm:"not null"`
	Direction   string `gorm:"type:varchar(10);not null"`
	Category    string `gorm:"type:varchar(50);not null"`
	Description string
	Reference   string `gorm:"index"`
	// CashRegisterID is set when the entry also touched a register float
	// (cash expense) so a later reversal can restore the float.
	CashRegisterID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

func (StoreTransaction) TableName() string { return "store_transactions" }
