package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"lms-backend/internal/auth"
	"lms-backend/internal/logger"
	appErrors "lms-backend/pkg/errors"
	"lms-backend/pkg/utils"
)

// ClaimsKey is the gin context key holding *auth.Claims for authenticated requests.
const ClaimsKey = "claims"

// TokenVerifier is the part of the token issuer the gate needs.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate reads the session cookie, verifies it and attaches the claims to
// the context. It never touches persisted state.
func Authenticate(verifier TokenVerifier, policy *auth.CookiePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := policy.Token(c)
		if token == "" {
			utils.AbortWithError(c, appErrors.Unauthenticated(appErrors.ErrUnauthenticated))
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				utils.AbortWithError(c, appErrors.Unauthenticated(appErrors.ErrSessionExpired))
				return
			}
			logger.Debug("Session token rejected",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", utils.RoutePath(c)),
				zap.Error(err),
			)
			utils.AbortWithError(c, appErrors.Unauthenticated(appErrors.ErrUnauthenticated))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims stored by Authenticate.
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
