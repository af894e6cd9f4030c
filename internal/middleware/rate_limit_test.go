package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matprat/matprat/backend/internal/logging"
)

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(RateLimitConfig{Window: time.Hour, Limit: 3, KeyPrefix: "test"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}
	allowed, remaining, _, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	// other clients have their own bucket
	allowed, _, _, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, allowed)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, errors.New("redis down")
}

func (failingLimiter) Config() RateLimitConfig { return LoginRateLimit }

func limitedRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.POST("/api/login", RateLimit(l, logging.Discard()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	r := limitedRouter(NewLocalLimiter(RateLimitConfig{Window: time.Hour, Limit: 1}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many attempts. Please try again later."}`, w.Body.String())
}

func TestRateLimitFailsOpen(t *testing.T) {
	w := httptest.NewRecorder()
	limitedRouter(failingLimiter{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewLoginLimiterFallsBackToLocal(t *testing.T) {
	_, ok := NewLoginLimiter(nil).(*LocalLimiter)
	assert.True(t, ok)
}
