package handlers

import (
	"net/http"

	"tradehub_backend/internal/models"
	"tradehub_backend/internal/services"
	"tradehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAdminHandler(base BaseHandler, authService services.AuthService) *AdminHandler {
	return &AdminHandler{BaseHandler: base, authService: authService}
}

// ListUsers godoc
// @Summary Paginated list of users (admin)
// @Tags admin
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	users, total, err := h.authService.ListUsers(page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":    users,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// ChangeUserStatus godoc
// @Summary Suspend, activate or deactivate a user (admin)
// @Tags admin
// @Security BearerAuth
// @Router /admin/users/{id}/status [patch]
func (h *AdminHandler) ChangeUserStatus(c *gin.Context) {
	var req dto.ChangeUserStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.authService.ChangeUserStatus(c.Param("id"), models.UserStatus(req.Status)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated"})
}
