package handler

import (
	"net/http"
	"strconv"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/middleware"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// Move godoc
// @Summary Applies a stock movement (IN, OUT, TRANSFER, ADJUSTMENT)
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.StockMovementRequest true "Movement data"
// @Success 201 {object} dto.StockMovementResponse
// @Failure 422 {object} apperr.APIError
// @Router /v1/stock/movements [post]
func (h *StockHandler) Move(c *gin.Context) {
	var req dto.StockMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Apply(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMovements returns the filtered movement log.
func (h *StockHandler) ListMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.ListMovements(c.Request.Context(), dto.StockMovementFilter{
		ProductID: c.Query("product_id"),
		StoreID:   c.Query("store_id"),
		Type:      c.Query("type"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
