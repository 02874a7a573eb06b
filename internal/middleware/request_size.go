package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"lms-backend/internal/logger"
	"lms-backend/pkg/utils"
)

const (
	// DefaultMaxRequestSize caps JSON bodies.
	DefaultMaxRequestSize = 1 << 20
	// DefaultMaxUploadSize caps multipart bodies on upload routes.
	DefaultMaxUploadSize = 100 << 20
)

// UploadRoute names a route that accepts file uploads, e.g.
// UploadRoute(http.MethodPost, "/api/v1/courses/:id").
func UploadRoute(method, fullPath string) string {
	return method + " " + fullPath
}

// RequestSizeLimitMiddleware limits request bodies to maxSize bytes, or to
// maxUploadSize on the routes listed in uploadRoutes. Routes are matched on
// their template, so it must be installed on the engine, not on NoRoute.
func RequestSizeLimitMiddleware(maxSize, maxUploadSize int64, uploadRoutes ...string) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}

	uploads := make(map[string]struct{}, len(uploadRoutes))
	for _, r := range uploadRoutes {
		uploads[r] = struct{}{}
	}

	return func(c *gin.Context) {
		limit := maxSize
		if _, ok := uploads[UploadRoute(c.Request.Method, c.FullPath())]; ok {
			limit = maxUploadSize
		}

		if c.Request.ContentLength > limit {
			logger.Warn("Request body too large",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", utils.RoutePath(c)),
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("limit", limit),
			)
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
