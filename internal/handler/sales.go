package handler

import (
	"net/http"
	"strconv"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/middleware"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct{ svc service.SaleService }

func NewSaleHandler(svc service.SaleService) *SaleHandler { return &SaleHandler{svc: svc} }

// Create godoc
// @Summary Creates a sale: stock out, cash float in, all atomic
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateSaleRequest true "Sale data"
// @Success 201 {object} dto.SaleResponse
// @Failure 422 {object} apperr.APIError
// @Router /v1/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateStatus transitions a sale between lifecycle states; cancellations and
// refunds restock every line item.
func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid sale id"})
		return
	}
	var req dto.UpdateSaleStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one sale with its items.
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid sale id"})
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns a filtered, paginated sale listing.
func (h *SaleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.List(c.Request.Context(), dto.SaleFilter{
		StoreID: c.Query("store_id"),
		Status:  c.Query("status"),
		Date:    c.Query("date"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
