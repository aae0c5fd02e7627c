package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitPeriod = time.Minute

// RateLimiter allows at most perMinute requests per client IP and route
// group. It is a no-op without Redis, and lets requests through when Redis
// fails.
func RateLimiter(client *redis.Client, scope string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || perMinute <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:" + scope + ":" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Rate limiter: redis unavailable: %v", err)
			c.Next()
			return
		}

		// First hit of the window starts the expiry.
		if count == 1 {
			client.Expire(ctx, key, rateLimitPeriod)
		}

		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, please try again later"})
			return
		}

		c.Next()
	}
}
