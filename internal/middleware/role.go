package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"lms-backend/internal/domain/user"
	"lms-backend/internal/logger"
	appErrors "lms-backend/pkg/errors"
	"lms-backend/pkg/utils"
)

// AuthorizeRoles lets the request through only when the authenticated role is in
// required. It must run after Authenticate.
func AuthorizeRoles(required user.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			utils.AbortWithError(c, appErrors.Unauthenticated(appErrors.ErrUnauthenticated))
			return
		}

		if !required.Contains(claims.Role) {
			logger.Warn("Role not permitted for route",
				zap.String("request_id", GetRequestID(c)),
				zap.String("user_id", claims.UserID.String()),
				zap.String("role", claims.Role.String()),
				zap.String("path", utils.RoutePath(c)),
				zap.String("event", "authorization_denied"),
			)
			utils.AbortWithError(c, appErrors.Forbidden(appErrors.ErrForbidden.Error()))
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return AuthorizeRoles(user.NewRoleSet(user.RoleAdmin))
}
