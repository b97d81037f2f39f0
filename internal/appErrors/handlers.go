package appErrors

import (
	"tradehub_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError - обработка ошибок для Gin контекста
func HandleError(c *gin.Context, err *AppError) {
	if err.HTTPCode >= 500 {
		logger.Error("server error", "code", err.Code, "error", err.Error(), "path", c.Request.URL.Path)
	}

	c.JSON(err.HTTPCode, ErrorResponse{Error: err})
}

// HandleAnyError оборачивает неизвестные ошибки в InternalError
func HandleAnyError(c *gin.Context, err error) {
	var appErr *AppError
	if As(err, &appErr) {
		HandleError(c, appErr)
		return
	}
	HandleError(c, InternalError(err))
}
