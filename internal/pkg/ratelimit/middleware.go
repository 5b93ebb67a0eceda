package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware rate-limits by client IP
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return keyedMiddleware(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// UserBasedMiddleware rate-limits by authenticated user, falling back to IP
func UserBasedMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return keyedMiddleware(limiter, func(c *gin.Context) string {
		if userID := c.GetString("userID"); userID != "" {
			return userID
		}
		return c.ClientIP()
	})
}

func keyedMiddleware(limiter *RateLimiter, keyFunc func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		remaining := limiter.GetRemaining(key)
		resetTime := limiter.GetResetTime(key)

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded. Try again later.",
				"reset_time": resetTime.Format(time.RFC3339),
				"limit":      limiter.limit,
				"remaining":  remaining,
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(key)))
		c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		c.Next()
	}
}
