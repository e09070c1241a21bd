package dto

// ExpenseRequest debits the store finance ledger. For CASH expenses the float
// of the given (or the caller's active) register is decreased as well.
type ExpenseRequest struct {
	StoreID        string `json:"store_id" validate:"required,uuid"`
	CashRegisterID string `json:"cash_register_id" validate:"omitempty,uuid"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	Category       string `json:"category" validate:"required"`
	Description    string `json:"description"`
	Reference      string `json:"reference"`
	PaymentMethod  string `json:"payment_method" validate:"required,oneof=CASH CARD TRANSFER"`
}

type RevenueRequest struct {
	StoreID     string `json:"store_id" validate:"required,uuid"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
}

type StoreTransactionResponse struct {
	ID             string  `json:"id"`
	StoreID        string  `json:"store_id"`
	UserID         string  `json:"user_id"`
	Amount         int64   `json:"amount"`
	Direction      string  `json:"direction"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	Reference      string  `json:"reference,omitempty"`
	CashRegisterID *string `json:"cash_register_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
	// CashSyncFailed is set when the expense committed but the register float
	// update failed — the discrepancy is surfaced, never silently dropped.
	CashSyncFailed bool `json:"cash_sync_failed,omitempty"`
}

type StoreTransactionFilter struct {
	StoreID   string
	Direction string
	Category  string
	Page      int
	Limit     int
}

type StoreTransactionListResponse struct {
	Data  []StoreTransactionResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}
