package middleware

import (
	"net/http"
	"time"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger пишет строку access-лога на каждый запрос
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.HTTPLog(
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}

// Recovery перехватывает панику обработчика и отвечает 500 в общем формате
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", "panic", r, "path", c.Request.URL.Path)
				appErrors.HandleError(c, appErrors.New(
					appErrors.CodeInternalError,
					"Internal server error",
					http.StatusInternalServerError,
				))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// CORS для фронтенда
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, Stripe-Signature")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
