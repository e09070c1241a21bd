package dto

type OpenRegisterRequest struct {
	StoreID       string `json:"store_id" validate:"required,uuid"`
	OpeningAmount int64  `json:"opening_amount" validate:"min=0"`
	Notes         string `json:"notes"`
}

// RegisterAdjustRequest is a manual float adjustment while the register is open.
// Op: "ADD" | "SUBTRACT"
type RegisterAdjustRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Op          string `json:"op" validate:"required,oneof=ADD SUBTRACT"`
	Description string `json:"description" validate:"required"`
}

type CloseRegisterRequest struct {
	ClosingAmount int64  `json:"closing_amount" validate:"min=0"`
	Notes         string `json:"notes"`
}

type RegisterResponse struct {
	ID              string  `json:"id"`
	StoreID         string  `json:"store_id"`
	UserID          string  `json:"user_id"`
	Status          string  `json:"status"`
	OpeningAmount   int64   `json:"opening_amount"`
	AvailableAmount int64   `json:"available_amount"`
	ClosingAmount   *int64  `json:"closing_amount,omitempty"`
	ExpectedAmount  *int64  `json:"expected_amount,omitempty"`
	Difference      *int64  `json:"difference,omitempty"`
	DeviationClass  *string `json:"deviation_class,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	OpenedAt        string  `json:"opened_at"`
	ClosedAt        *string `json:"closed_at,omitempty"`
}

type RegisterListResponse struct {
	Data  []RegisterResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
