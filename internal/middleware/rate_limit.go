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
	"go.uber.org/zap"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for counter keys
	KeyPrefix string
}

// WindowCounter increments a fixed-window counter and returns the new count.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter keeps counters in Redis so limits hold across instances.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a counter backed by client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the first hit's deadline so retries cannot extend the window
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// LocalCounter keeps counters in process memory. Used when Redis is not configured.
type LocalCounter struct {
	mu        sync.Mutex
	counts    map[string]int64
	expires   map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

// NewLocalCounter creates an in-process counter.
func NewLocalCounter() *LocalCounter {
	return &LocalCounter{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *LocalCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > window {
		for k, exp := range l.expires {
			if !now.Before(exp) {
				delete(l.counts, k)
				delete(l.expires, k)
			}
		}
		l.lastSweep = now
	}
	if exp, ok := l.expires[key]; !ok || !now.Before(exp) {
		l.counts[key] = 0
		l.expires[key] = now.Add(window)
	}
	l.counts[key]++
	return l.counts[key], nil
}

// RateLimiter enforces fixed-window limits per wallet
type RateLimiter struct {
	counter WindowCounter
	config  RateLimitConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(counter WindowCounter, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		counter: counter,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// NewSubmissionRateLimiter limits recipe submissions per wallet.
func NewSubmissionRateLimiter(counter WindowCounter, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(counter, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_submission",
	}, logger)
}

// NewDecryptRateLimiter limits decryptions per wallet and recipe.
func NewDecryptRateLimiter(counter WindowCounter, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(counter, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_decrypt",
	}, logger)
}

// IsAllowed checks if a request for the given subject is allowed
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix())

	count, err := rl.counter.Incr(ctx, key, rl.config.Window)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	resetTime := windowStart.Add(rl.config.Window)
	return int(count) <= rl.config.Limit, remaining, resetTime, nil
}

// RateLimitMiddleware returns a Gin middleware that enforces the limit per wallet
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context, address string) (string, bool) {
		return address, true
	})
}

// PerRecipeRateLimitMiddleware enforces the limit per wallet and recipe id
func (rl *RateLimiter) PerRecipeRateLimitMiddleware() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context, address string) (string, bool) {
		recipeID := c.Param("id")
		if recipeID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "recipe ID is required"})
			return "", false
		}
		return address + ":" + recipeID, true
	})
}

func (rl *RateLimiter) middleware(subject func(c *gin.Context, address string) (string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		address, ok := WalletAddress(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "wallet not authenticated"})
			return
		}
		key, ok := subject(c, address)
		if !ok {
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			// fail open
			rl.logger.Warn("rate limit check failed", zap.String("prefix", rl.config.KeyPrefix), zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          int(resetTime.Sub(rl.now()).Seconds()),
			})
			return
		}

		c.Next()
	}
}
