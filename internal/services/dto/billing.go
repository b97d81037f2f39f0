package dto

type PurchaseCreditsRequest struct {
	Pack string `json:"pack" validate:"required,oneof=starter standard pro"`
}

type SubscribeRequest struct {
	Plan string `json:"plan" validate:"required,oneof=monthly yearly"`
}

type CheckoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type SubscriptionResponse struct {
	Plan      string `json:"plan,omitempty"`
	Status    string `json:"status,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}
