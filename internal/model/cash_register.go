package model

import (
	"time"

	"github.com/google/uuid"
)

// Register states. CLOSED is terminal: no field of a closed register changes.
const (
	RegisterOpen   = "OPEN"
	RegisterClosed = "CLOSED"
)

// Deviation classification at close, by percentage of the expected amount.
// normal: |diff| <= 1%, warning: <= 5%, critical: > 5%.
const (
	DeviationNormal   = "normal"
	DeviationWarning  = "warning"
	DeviationCritical = "critical"
)

// CashRegister is one opened drawer session. The opening amount is drawn from
// the store finance ledger when the drawer opens; AvailableAmount is the live
// cash float, updated by cash sales and cash expenses while OPEN.
type CashRegister struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status  string    `gorm:"type:varchar(10);not null;default:'OPEN'"`
	// Amounts in the smallest currency unit.
	OpeningAmount   int64 `gorm:"not null"`
	AvailableAmount int64 `gorm:"not null"`
	// Closing fields are set exactly once, when the session transitions to CLOSED.
	ClosingAmount  *int64
	ExpectedAmount *int64
	Difference     *int64
	// DeviationClass: "normal" | "warning" | "critical"
	DeviationClass *string `gorm:"type:varchar(20)"`
	Notes          *string
	OpenedAt       time.Time
	ClosedAt       *time.Time
}

func (CashRegister) TableName() string { return "cash_registers" }
