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

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open godoc
// @Summary Opens a cash register session, drawing the float from store funds
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenRegisterRequest true "Opening data"
// @Success 201 {object} dto.RegisterResponse
// @Failure 409 {object} apperr.APIError
// @Failure 422 {object} apperr.APIError
// @Router /v1/registers [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Adjust applies a manual ADD/SUBTRACT to the float of an open register.
func (h *RegisterHandler) Adjust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid register id"})
		return
	}
	var req dto.RegisterAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateAvailable(c.Request.Context(), id, req); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Close godoc
// @Summary Closes a register, computing the difference against the live float
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register ID"
// @Param body body dto.CloseRegisterRequest true "Counted closing amount"
// @Success 200 {object} dto.RegisterResponse
// @Failure 409 {object} apperr.APIError
// @Router /v1/registers/{id}/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid register id"})
		return
	}
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Close(c.Request.Context(), userID, claims.Role, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes a closed register with no sales; any frozen float is
// credited back to the store.
func (h *RegisterHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid register id"})
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.Delete(c.Request.Context(), userID, claims.Role, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get returns one register by id.
func (h *RegisterHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid register id"})
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetActive returns the caller's open register in the given store.
func (h *RegisterHandler) GetActive(c *gin.Context) {
	storeID, err := uuid.Parse(c.Query("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "store_id query parameter required"})
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.GetActive(c.Request.Context(), userID, storeID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of register sessions.
func (h *RegisterHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.svc.History(c.Request.Context(), c.Query("store_id"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
