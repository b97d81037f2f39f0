package handlers

import (
	"io"
	"net/http"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/services"
	"tradehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	BaseHandler
	billingService services.BillingService
}

func NewBillingHandler(base BaseHandler, billingService services.BillingService) *BillingHandler {
	return &BillingHandler{BaseHandler: base, billingService: billingService}
}

// PurchaseCredits godoc
// @Summary Start a credit pack purchase
// @Tags billing
// @Security BearerAuth
// @Router /billing/credits [post]
func (h *BillingHandler) PurchaseCredits(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.PurchaseCreditsRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.billingService.PurchaseCredits(userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Subscribe godoc
// @Summary Start a subscription checkout
// @Tags billing
// @Security BearerAuth
// @Router /billing/subscribe [post]
func (h *BillingHandler) Subscribe(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.billingService.Subscribe(userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelSubscription godoc
// @Summary Cancel the active subscription
// @Tags billing
// @Security BearerAuth
// @Router /billing/subscribe [delete]
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.billingService.CancelSubscription(userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancelled"})
}

// GetSubscription godoc
// @Summary Current subscription state
// @Tags billing
// @Security BearerAuth
// @Router /billing/subscription [get]
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	resp, err := h.billingService.GetSubscription(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Webhook godoc
// @Summary Stripe webhook endpoint
// @Tags billing
// @Router /billing/webhook [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		appErrors.HandleError(c, appErrors.NewBadRequestError("Cannot read webhook body"))
		return
	}

	if err := h.billingService.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
