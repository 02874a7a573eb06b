package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	appErrors "lms-backend/pkg/errors"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RoutePath returns the matched route template, e.g. /api/v1/user/reset/:resetToken.
// Path parameters may carry reset tokens, so logs use this instead of the raw path.
// Unmatched requests yield "".
func RoutePath(c *gin.Context) string {
	return c.FullPath()
}

// SuccessResponse writes {"success": true, "message": ..., ...payload}.
func SuccessResponse(c *gin.Context, statusCode int, message string, payload gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
	})
}

// RespondError is the single place where an error becomes an HTTP response.
// AppErrors carry their own status and client message; anything else is an
// unexpected failure and is logged before a generic 500 is sent.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if appErr, ok := appErrors.As(err); ok {
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			zap.L().Error("Upstream failure",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("path", RoutePath(c)),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
		}
		_ = c.Error(err)
		ErrorResponse(c, status, appErr.Message)
		return
	}

	zap.L().Error("Internal server error",
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.String("path", RoutePath(c)),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	_ = c.Error(err)
	ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
}

// AbortWithError responds like RespondError and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}
