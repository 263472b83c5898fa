package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
	"github.com/kwsc-digital/efiling-api/pkg/response"
)

// RateLimit applies a fixed-window per-user limit on mutating routes backed
// by Redis. When Redis is unreachable the request is allowed through; the
// limiter protects against abuse, it is not a correctness gate.
func RateLimit(client *redis.Client, requests int, window time.Duration) gin.HandlerFunc {
	if requests <= 0 {
		requests = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP()
		if claimsValue, exists := c.Get(ContextUserKey); exists {
			if claims, ok := claimsValue.(*models.JWTClaims); ok {
				key = "ratelimit:" + claims.UserID
			}
		}
		key = fmt.Sprintf("%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, window)
		}
		if count > int64(requests) {
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
