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

type FinanceHandler struct {
	moneyflow service.MoneyFlowService
	finance   service.FinanceService
}

func NewFinanceHandler(moneyflow service.MoneyFlowService, finance service.FinanceService) *FinanceHandler {
	return &FinanceHandler{moneyflow: moneyflow, finance: finance}
}

// RecordExpense godoc
// @Summary Records a business expense against the store finance ledger
// @Tags finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ExpenseRequest true "Expense data"
// @Success 201 {object} dto.StoreTransactionResponse
// @Failure 422 {object} apperr.APIError
// @Router /v1/finance/expenses [post]
func (h *FinanceHandler) RecordExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.moneyflow.RecordExpense(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordRevenue credits the store finance ledger with a non-sale income.
func (h *FinanceHandler) RecordRevenue(c *gin.Context) {
	var req dto.RevenueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.moneyflow.RecordRevenue(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemoveTransaction emits the compensating inverse entry for a recorded
// expense or revenue. The original row is never deleted.
func (h *FinanceHandler) RemoveTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &apperr.APIError{Kind: apperr.Validation.String(), Detail: "invalid transaction id"})
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.moneyflow.Remove(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTransactions returns the filtered store finance ledger.
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.finance.ListTransactions(c.Request.Context(), dto.StoreTransactionFilter{
		StoreID:   c.Query("store_id"),
		Direction: c.Query("direction"),
		Category:  c.Query("category"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
