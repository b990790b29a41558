package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuwanperera/corebank/internal/services"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"go.uber.org/zap"
)

// LedgerHandler exposes the money-movement endpoints. All routes require an
// authenticated session.
type LedgerHandler struct {
	logger  *zap.Logger
	service services.LedgerService
}

func NewLedgerHandler(logger *zap.Logger, svc services.LedgerService) *LedgerHandler {
	return &LedgerHandler{logger: logger, service: svc}
}

func (h *LedgerHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/transfer", h.Transfer)
	r.POST("/deposit", h.Deposit)
	r.POST("/bills/pay", h.PayBill)
}

func (h *LedgerHandler) Transfer(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	balance, err := h.service.Transfer(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.TransferResponse{Success: true, Message: "Transfer completed", Balance: balance})
}

func (h *LedgerHandler) Deposit(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	balance, err := h.service.Deposit(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.DepositResponse{Success: true, Message: "Deposit completed", NewBalance: balance})
}

func (h *LedgerHandler) PayBill(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	balance, err := h.service.PayBill(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, views.PayBillResponse{Success: true, Message: "Bill paid", Balance: balance})
}
