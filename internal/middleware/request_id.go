package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"lms-backend/pkg/utils"
)

const (
	RequestIDKey    = utils.RequestIDKey
	RequestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware assigns a unique request ID to each incoming HTTP request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
