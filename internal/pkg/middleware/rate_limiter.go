package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/pkg/redis"
	"github.com/codeskytz/date-api/internal/pkg/response"
)

// RateLimit enforces a sliding-window request limit per client IP for
// the routes it wraps. Redis failures fail open.
func RateLimit(rdb *redis.Client, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		allowed, remaining, err := rdb.SlidingWindowAllow(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		if !allowed {
			response.TooManyRequests(c, "Too many requests. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
