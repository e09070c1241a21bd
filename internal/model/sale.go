package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale states. CANCELLED and REFUNDED are terminal.
const (
	SalePending   = "PENDING"
	SaleCompleted = "COMPLETED"
	SaleCancelled = "CANCELLED"
	SaleRefunded  = "REFUNDED"
)

// Payment methods.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
)

// Sale is the immutable record of one checkout. Items are created atomically
// with the sale; status is the only mutable field and follows
// PENDING→{COMPLETED,CANCELLED}, COMPLETED→REFUNDED.
type Sale struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// SaleNumber is a human-readable month-scoped sequence: POS-YYYYMM-NNNN.
	SaleNumber     string     `gorm:"uniqueIndex;not null"`
	StoreID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null"`
	CashRegisterID *uuid.UUID `gorm:"type:uuid;index"`
	// Amounts in the smallest currency unit.
	Subtotal      int64  `gorm:"not null"`
	Discount      int64  `gorm:"not null;default:0"`
	Tax           int64  `gorm:"not null;default:0"`
	Total         int64  `gorm:"not null"`
	PaymentMethod string `gorm:"type:varchar(20);not null"`
	AmountPaid    int64  `gorm:"not null"`
	Change        int64  `gorm:"not null;default:0"`
	Status        string `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
	User  *User      `gorm:"foreignKey:UserID"`
}

// SaleItem is one line of a sale. Subtotal = Quantity × UnitPrice.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int       `gorm:"not null"`
	UnitPrice int64     `gorm:"not null"`
	Subtotal  int64     `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SaleCounter backs sale-number generation: one row per calendar month,
// bumped with INSERT … ON CONFLICT DO UPDATE … RETURNING inside the sale
// transaction. Survives restarts and is safe under concurrent creation.
type SaleCounter struct {
	Period     string `gorm:"type:varchar(6);primaryKey"` // YYYYMM
	LastNumber int    `gorm:"not null;default:0"`
}

func (SaleCounter) TableName() string { return "sale_counters" }
