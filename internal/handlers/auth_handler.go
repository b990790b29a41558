package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuwanperera/corebank/internal/services"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/nuwanperera/corebank/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger  *zap.Logger
	service services.AuthService
	limiter *pkg.DistributedLimiter
}

func NewAuthHandler(logger *zap.Logger, svc services.AuthService, limiter *pkg.DistributedLimiter) *AuthHandler {
	return &AuthHandler{logger: logger, service: svc, limiter: limiter}
}

// RegisterRoutes registers the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
}

// RegisterProtectedRoutes registers profile endpoints behind the auth middleware.
func (h *AuthHandler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	r.POST("/profile/password", h.ChangePassword)
}

func (h *AuthHandler) Register(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		respondError(c, h.logger, "", pkg.NewAppError(pkg.ErrServerCode, "missing trace id", err))
		return
	}
	if !h.allow(c, traceID) {
		return
	}

	var req views.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), traceID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		respondError(c, h.logger, "", pkg.NewAppError(pkg.ErrServerCode, "missing trace id", err))
		return
	}
	if !h.allow(c, traceID) {
		return
	}

	var req views.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), traceID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		respondError(c, h.logger, "", pkg.NewAppError(pkg.ErrServerCode, "missing trace id", err))
		return
	}

	header := c.Request.Header.Get(pkg.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "missing bearer token", nil))
		return
	}

	if err := h.service.Logout(c.Request.Context(), traceID, token); err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}
	user, err := h.service.GetProfile(c.Request.Context(), traceID, userID)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), traceID, userID, req)
	if err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	traceID, userID, ok := callerContext(c, h.logger)
	if !ok {
		return
	}

	var req views.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), traceID, userID, req); err != nil {
		respondError(c, h.logger, traceID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed"})
}

// allow enforces the shared rate limit on credential endpoints.
func (h *AuthHandler) allow(c *gin.Context, traceID string) bool {
	if h.limiter == nil || h.limiter.Allow(c.Request.Context()) {
		return true
	}
	respondError(c, h.logger, traceID, pkg.NewAppError(pkg.ErrRateLimitedCode, "too many requests", nil))
	return false
}
