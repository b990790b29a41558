package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nuwanperera/corebank/internal/services"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"go.uber.org/zap"
)

type AccountHandler struct {
	logger  *zap.Logger
	service services.AccountService
}

func NewAccountHandler(logger *zap.Logger, svc services.AccountService) *AccountHandler {
	return &AccountHandler{logger: logger, service: svc}
}

func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/accounts", h.ListAccounts)
	r.GET("/accounts/:id", h.GetAccount)
	r.POST("/accounts/freeze", h.FreezeAccount)
	r.PUT("/accounts/settings", h.UpdateSettings)
	r.GET("/transactions", h.ListTransactions)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}
	accounts, err := h.service.List(c.Request.Context(), traceID, userID)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "accounts": accounts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}
	account, err := h.service.Get(c.Request.Context(), traceID, userID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

func (h *AccountHandler) FreezeAccount(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.FreezeAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	account, err := h.service.Freeze(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

func (h *AccountHandler) UpdateSettings(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.AccountSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	account, err := h.service.UpdateSettings(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

func (h *AccountHandler) ListTransactions(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	txns, err := h.service.ListTransactions(c.Request.Context(), traceID, userID, limit)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": txns})
}
