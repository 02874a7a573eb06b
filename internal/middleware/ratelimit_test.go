package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.POST("/x", handlers...)
	return router
}

func TestRateLimitMiddleware_BlocksAfterBurst(t *testing.T) {
	router := newLimitedRouter(RateLimitMiddleware(0.001, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_DisabledWhenRateIsZero(t *testing.T) {
	router := newLimitedRouter(RateLimitMiddleware(0, 0))

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestSizeLimitMiddleware(8, 32, UploadRoute(http.MethodPost, "/upload/:id")))
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.POST("/x", ok)
	router.POST("/upload/:id", ok)

	post := func(path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		return w
	}

	assert.Equal(t, http.StatusNoContent, post("/x", "tiny").Code)

	w := post("/x", "far too large a body")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body too large")

	assert.Equal(t, http.StatusNoContent, post("/upload/1", "far too large a body").Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, post("/upload/1", strings.Repeat("x", 33)).Code)
}

func TestRateLimiter_DropsIdleClients(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.getLimiter("10.0.0.1").AllowN(now, 1))
	rl.getLimiter("10.0.0.2")
	assert.Len(t, rl.limiters, 2, "no cleanup before the interval")

	now = now.Add(limiterCleanupInterval + time.Second)
	rl.getLimiter("10.0.0.3")

	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "10.0.0.3")
}
