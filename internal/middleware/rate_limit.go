package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// LoginRateLimit allows ten login attempts per client per fifteen minutes.
var LoginRateLimit = RateLimitConfig{
	Window:    15 * time.Minute,
	Limit:     10,
	KeyPrefix: "rate_limit:login",
}

// Limiter counts a request against key and reports whether it may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
	Config() RateLimitConfig
}

// RedisLimiter is a fixed-window counter shared by every server instance.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func NewRedisLimiter(client *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{redis: client, config: config}
}

func (rl *RedisLimiter) Config() RateLimitConfig {
	return rl.config
}

// Allow checks if a request for the given key is allowed
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// LocalLimiter keeps a token bucket per key in process memory. It is used
// when Redis is not configured.
type LocalLimiter struct {
	mu       sync.Mutex
	config   RateLimitConfig
	limiters map[string]*rate.Limiter
}

func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{config: config, limiters: make(map[string]*rate.Limiter)}
}

func (l *LocalLimiter) Config() RateLimitConfig {
	return l.config
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		every := l.config.Window / time.Duration(l.config.Limit)
		lim = rate.NewLimiter(rate.Every(every), l.config.Limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := time.Now()
	allowed := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, now.Add(l.config.Window), nil
}

// NewLoginLimiter prefers the shared Redis counter and falls back to the
// in-process limiter.
func NewLoginLimiter(client *redis.Client) Limiter {
	if client == nil {
		return NewLocalLimiter(LoginRateLimit)
	}
	return NewRedisLimiter(client, LoginRateLimit)
}

// RateLimit enforces limiter per client IP. Limiter failures are logged and
// the request is let through.
func RateLimit(limiter Limiter, log logrus.FieldLogger) gin.HandlerFunc {
	cfg := limiter.Config()
	return func(c *gin.Context) {
		allowed, remaining, reset, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithFields(logrus.Fields{"ip": c.ClientIP(), "error": err.Error()}).Warn("Rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())))
			respondError(c, http.StatusTooManyRequests, "Too many attempts. Please try again later.", "")
			return
		}
		c.Next()
	}
}
