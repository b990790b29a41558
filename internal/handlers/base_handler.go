package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{logger: logger}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (b *BaseHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError converts a service error into the standard error payload.
func respondError(c *gin.Context, logger *zap.Logger, traceID string, err error) {
	resp := pkg.ToErrorResponse(logger, traceID, err)
	c.JSON(resp.Status, resp)
}

// callerContext extracts the trace id and authenticated user id set by the
// middleware chain.
func callerContext(c *gin.Context, logger *zap.Logger) (string, uuid.UUID, bool) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		respondError(c, logger, "", pkg.NewAppError(pkg.ErrServerCode, "missing trace id", err))
		return "", uuid.Nil, false
	}
	userID, err := utils.GetUserID(c)
	if err != nil {
		respondError(c, logger, traceID, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "unauthorized", err))
		return "", uuid.Nil, false
	}
	return traceID, userID, true
}
