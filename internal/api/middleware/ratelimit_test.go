package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/m-zohaibk/AQUABILL/internal/api/middleware"
	"github.com/m-zohaibk/AQUABILL/internal/config"
)

func setupRateLimitRouter(bucketSize, refillRate int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		RateLimitBucketSize: bucketSize,
		RateLimitRefillRate: refillRate,
	}
	rm := middleware.NewRateLimiterMiddleware(cfg)

	r := gin.New()
	r.GET("/ping", rm.Limit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func TestRateLimiter_AllowsWithinBucket(t *testing.T) {
	r := setupRateLimitRouter(5, 1)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}
}

func TestRateLimiter_BlocksBeyondBucket(t *testing.T) {
	// Refill rate of 0 so the bucket never replenishes during the test.
	r := setupRateLimitRouter(2, 0)

	codes := []int{}
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.RemoteAddr = "10.0.0.2:12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}

func TestRateLimiter_IsolatesClients(t *testing.T) {
	r := setupRateLimitRouter(1, 0)

	first := httptest.NewRequest("GET", "/ping", nil)
	first.RemoteAddr = "10.0.0.3:12345"
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, first)
	assert.Equal(t, http.StatusOK, w1.Code)

	// Same client is now exhausted.
	second := httptest.NewRequest("GET", "/ping", nil)
	second.RemoteAddr = "10.0.0.3:12345"
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, second)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)

	// A different client has its own bucket.
	third := httptest.NewRequest("GET", "/ping", nil)
	third.RemoteAddr = "10.0.0.4:12345"
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, third)
	assert.Equal(t, http.StatusOK, w3.Code)
}
