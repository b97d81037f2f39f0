package handlers

import (
	"errors"
	"strconv"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/middleware"
	"tradehub_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

// BaseHandler - общие утилиты биндинга и разбора ошибок
type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) BaseHandler {
	return BaseHandler{validator: v}
}

// BindAndValidateJSON парсит тело запроса и гоняет его через validator
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		appErrors.HandleError(c, appErrors.NewBadRequestError("Invalid request body"))
		return false
	}
	return h.validate(c, obj)
}

// BindAndValidateQuery парсит query-параметры
func (h *BaseHandler) BindAndValidateQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		appErrors.HandleError(c, appErrors.NewBadRequestError("Invalid query parameters"))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	if err := h.validator.Validate(obj); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			appErrors.HandleError(c, appErrors.ValidationError(vErr.Errors))
		} else {
			appErrors.HandleAnyError(c, err)
		}
		return false
	}
	return true
}

// HandleServiceError отправляет ошибку сервиса в общем формате
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	appErrors.HandleAnyError(c, err)
}

// CurrentUserID достает идентификатор пользователя из контекста запроса
func (h *BaseHandler) CurrentUserID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		appErrors.HandleError(c, appErrors.ErrUnauthorized)
	}
	return id, ok
}

// ParsePagination читает page / pageSize с дефолтами
func ParsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
