package middleware

import (
	"errors"
	"strings"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/auth"
	"tradehub_backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextRole   = "userRole"
)

// AuthMiddleware проверяет Bearer-токен и кладет userID и роль в контекст
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			appErrors.HandleError(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				appErrors.HandleError(c, appErrors.ErrTokenExpired)
			} else {
				appErrors.HandleError(c, appErrors.ErrInvalidToken)
			}
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireRoles пропускает только пользователей перечисленных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if !allowed[role] {
			appErrors.HandleError(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID возвращает идентификатор текущего пользователя
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// GetUserRole возвращает роль текущего пользователя
func GetUserRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(ContextRole))
}
