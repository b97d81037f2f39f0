package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit - фиксированное окно на Redis INCR+EXPIRE.
// При недоступном Redis запросы пропускаются (fail-open): лимитер
// защищает от перебора, но не должен ронять сервис.
func RateLimit(client *redis.Client, limit int, window time.Duration, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
		defer cancel()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			appErrors.HandleError(c, appErrors.New(
				appErrors.CodeRateLimited,
				"Too many requests, please try again later",
				http.StatusTooManyRequests,
			))
			c.Abort()
			return
		}
		c.Next()
	}
}
