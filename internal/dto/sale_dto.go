package dto

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	StoreID        string            `json:"store_id" validate:"required,uuid"`
	CashRegisterID string            `json:"cash_register_id" validate:"omitempty,uuid"`
	Items          []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount       int64             `json:"discount" validate:"min=0"`
	Tax            int64             `json:"tax" validate:"min=0"`
	PaymentMethod  string            `json:"payment_method" validate:"required,oneof=CASH CARD TRANSFER"`
	AmountPaid     int64             `json:"amount_paid" validate:"required,gt=0"`
	Notes          string            `json:"notes"`
	CustomerEmail  string            `json:"customer_email" validate:"omitempty,email"`
}

type UpdateSaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED CANCELLED REFUNDED"`
}

type SaleItemResponse struct {
	ProductID string `json:"product_id"`
	Product   string `json:"product,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	SaleNumber     string             `json:"sale_number"`
	StoreID        string             `json:"store_id"`
	UserID         string             `json:"user_id"`
	CashRegisterID *string            `json:"cash_register_id,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       int64              `json:"subtotal"`
	Discount       int64              `json:"discount"`
	Tax            int64              `json:"tax"`
	Total          int64              `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	AmountPaid     int64              `json:"amount_paid"`
	Change         int64              `json:"change"`
	Status         string             `json:"status"`
	CreatedAt      string             `json:"created_at"`
}

type SaleFilter struct {
	StoreID string
	Status  string
	Date    string // YYYY-MM-DD
	Page    int
	Limit   int
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
