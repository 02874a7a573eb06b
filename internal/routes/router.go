package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"lms-backend/internal/auth"
	"lms-backend/internal/config"
	"lms-backend/internal/delivery/http/handler"
	"lms-backend/internal/logger"
	"lms-backend/internal/middleware"
	"lms-backend/internal/usecase/course"
	"lms-backend/internal/usecase/payment"
	"lms-backend/internal/usecase/user"
	"lms-backend/pkg/utils"
)

const healthCheckTimeout = 2 * time.Second

// uploadRoutes take multipart bodies up to SERVER_MAX_UPLOAD_MB; everything else
// is capped at middleware.DefaultMaxRequestSize.
var uploadRoutes = []string{
	middleware.UploadRoute(http.MethodPost, "/api/v1/courses/:id"),
	middleware.UploadRoute(http.MethodPut, "/api/v1/user/update/:id"),
	middleware.UploadRoute(http.MethodPost, "/api/v1/user/update/:id"),
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies is everything the router needs, assembled by main.
type Dependencies struct {
	UserService    *user.Service
	CourseService  *course.Service
	PaymentService *payment.Service
	Tokens         middleware.TokenVerifier
	Cookies        *auth.CookiePolicy
	Store          HealthChecker
}

func SetupRoutes(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize, cfg.Server.MaxUploadMB<<20, uploadRoutes...))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			logger.Error("Health check failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	router.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "OOPS!!! 404 Not Found")
	})

	authenticate := middleware.Authenticate(deps.Tokens, deps.Cookies)
	adminOnly := middleware.AdminOnly()
	authLimit := middleware.RateLimitMiddleware(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	userHandler := handler.NewUserHandler(deps.UserService, deps.Cookies)
	courseHandler := handler.NewCourseHandler(deps.CourseService)
	paymentHandler := handler.NewPaymentHandler(deps.PaymentService)

	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1, authLimit, authenticate)
		courseHandler.RegisterRoutes(v1, authenticate, adminOnly)
		paymentHandler.RegisterRoutes(v1, authenticate)
	}

	logger.Info("All routes initialized")
	return router
}
