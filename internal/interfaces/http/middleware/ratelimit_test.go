package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows up to the limit per key", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("10.0.0.1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.2"))
		assert.Equal(t, 0, limiter.Remaining("10.0.0.1"))
		assert.Equal(t, 3, limiter.Remaining("10.0.0.3"))
	})

	t.Run("window resets", func(t *testing.T) {
		limiter := NewRateLimiter(1, 50*time.Millisecond)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"))
		time.Sleep(60 * time.Millisecond)
		assert.True(t, limiter.Allow("k"))
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		limiter.Stop()
		limiter.Stop()
	})
}

func TestLoginRateLimit(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	defer limiter.Stop()
	frozen := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return frozen }

	router := gin.New()
	router.POST("/login", LoginRateLimit(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	login := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 5; i++ {
		w := login("192.168.1.100")
		assert.Equal(t, http.StatusOK, w.Code, "attempt %d should be allowed", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	}

	w := login("192.168.1.100")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	assert.Contains(t, w.Body.String(), "Too many login attempts")
	// five tokens per minute refill one every 12s
	assert.Equal(t, "12", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, login("192.168.1.101").Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_RefillsEvenly(t *testing.T) {
	limiter := NewRateLimiter(4, time.Minute)
	defer limiter.Stop()
	clock := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 4; i++ {
		assert.True(t, limiter.Allow("k"))
	}
	assert.False(t, limiter.Allow("k"))
	assert.InDelta(t, 15, limiter.RetryAfter("k").Seconds(), 0.01)

	clock = clock.Add(16 * time.Second)
	assert.Equal(t, 1, limiter.Remaining("k"))
	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))
	assert.Zero(t, limiter.RetryAfter("unknown"))
}
