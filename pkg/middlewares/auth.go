package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"go.uber.org/zap"
)

// IdentityResolver turns a bearer token into a user identity. Implemented by
// the auth service; injected here so the middleware stays free of session
// storage details.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (uuid.UUID, error)
}

// Auth returns Gin middleware that rejects requests without a resolvable
// bearer token and stores the user id in the request context.
func Auth(logger *zap.Logger, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get(pkg.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(c)
			return
		}

		userID, err := resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			logger.Warn("token resolution failed",
				zap.String(pkg.TraceId, c.GetString(pkg.TraceId)), zap.Error(err))
			unauthorized(c)
			return
		}

		c.Set(pkg.UserId, userID.String())
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.ErrorResponse{
		Code:    pkg.ErrUnauthenticatedCode.Code,
		Message: pkg.ErrUnauthenticatedCode.Message,
	})
}
