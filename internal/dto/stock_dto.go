package dto

// StockMovementRequest covers all four movement types.
// IN/OUT require store_id; TRANSFER requires from_store_id and to_store_id;
// ADJUSTMENT sets new_quantity as an absolute value on (product_id, store_id).
type StockMovementRequest struct {
	Type        string `json:"type" validate:"required,oneof=IN OUT TRANSFER ADJUSTMENT"`
	ProductID   string `json:"product_id" validate:"required,uuid"`
	StoreID     string `json:"store_id" validate:"omitempty,uuid"`
	Quantity    int    `json:"quantity" validate:"omitempty,gt=0"`
	NewQuantity *int   `json:"new_quantity" validate:"omitempty,min=0"`
	FromStoreID string `json:"from_store_id" validate:"omitempty,uuid"`
	ToStoreID   string `json:"to_store_id" validate:"omitempty,uuid"`
	Reference   string `json:"reference"`
}

type StockMovementResponse struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	StoreID        string  `json:"store_id"`
	Type           string  `json:"type"`
	Quantity       int     `json:"quantity"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	FromStoreID    *string `json:"from_store_id,omitempty"`
	ToStoreID      *string `json:"to_store_id,omitempty"`
	Reference      string  `json:"reference,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type StockMovementFilter struct {
	ProductID string
	StoreID   string
	Type      string
	Page      int
	Limit     int
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
