package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuwanperera/corebank/internal/services"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"go.uber.org/zap"
)

// BillingHandler serves the bill registry and loan origination endpoints.
type BillingHandler struct {
	logger  *zap.Logger
	billing services.BillingService
	loans   services.LoanService
}

func NewBillingHandler(logger *zap.Logger, billing services.BillingService, loans services.LoanService) *BillingHandler {
	return &BillingHandler{logger: logger, billing: billing, loans: loans}
}

func (h *BillingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/bills", h.ListBills)
	r.POST("/loans/apply", h.ApplyLoan)
	r.GET("/loans", h.ListLoans)
}

func (h *BillingHandler) ListBills(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}
	bills, err := h.billing.ListBills(c.Request.Context(), traceID, userID)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bills": bills})
}

func (h *BillingHandler) ApplyLoan(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.ApplyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	resp, err := h.loans.Apply(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BillingHandler) ListLoans(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}
	loans, err := h.loans.List(c.Request.Context(), traceID, userID)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "loans": loans})
}
