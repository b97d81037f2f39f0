package handlers

import (
	"net/http"

	"tradehub_backend/internal/services"
	"tradehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TradeHandler struct {
	BaseHandler
	tradeService services.TradeService
}

func NewTradeHandler(base BaseHandler, tradeService services.TradeService) *TradeHandler {
	return &TradeHandler{BaseHandler: base, tradeService: tradeService}
}

// List godoc
// @Summary Trade catalog
// @Tags trades
// @Produce json
// @Success 200 {array} dto.TradeResponse
// @Router /trades [get]
func (h *TradeHandler) List(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"
	trades, err := h.tradeService.List(includeInactive)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// Get godoc
// @Summary Single trade by id
// @Tags trades
// @Router /trades/{id} [get]
func (h *TradeHandler) Get(c *gin.Context) {
	trade, err := h.tradeService.GetByID(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

// Create godoc
// @Summary Add a trade to the catalog (admin)
// @Tags trades
// @Security BearerAuth
// @Router /trades [post]
func (h *TradeHandler) Create(c *gin.Context) {
	var req dto.CreateTradeRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	trade, err := h.tradeService.Create(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trade)
}

// Update godoc
// @Summary Edit a trade (admin)
// @Tags trades
// @Security BearerAuth
// @Router /trades/{id} [put]
func (h *TradeHandler) Update(c *gin.Context) {
	var req dto.UpdateTradeRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	trade, err := h.tradeService.Update(c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

// Deactivate godoc
// @Summary Retire a trade from the catalog (admin)
// @Tags trades
// @Security BearerAuth
// @Router /trades/{id} [delete]
func (h *TradeHandler) Deactivate(c *gin.Context) {
	if err := h.tradeService.Deactivate(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trade deactivated"})
}
