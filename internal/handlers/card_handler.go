package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuwanperera/corebank/internal/services"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"go.uber.org/zap"
)

type CardHandler struct {
	logger  *zap.Logger
	service services.CardService
}

func NewCardHandler(logger *zap.Logger, svc services.CardService) *CardHandler {
	return &CardHandler{logger: logger, service: svc}
}

func (h *CardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/cards", h.ListCards)
	r.PUT("/cards", h.UpdateCard)
}

func (h *CardHandler) ListCards(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}
	cards, err := h.service.List(c.Request.Context(), traceID, userID)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cards": cards})
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), traceID, userID, req); err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Card updated"})
}
