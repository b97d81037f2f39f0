package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// CreditPack - пакет кредитов, продаваемый через Stripe Checkout
type CreditPack struct {
	Name     string
	Credits  int
	PriceGBP int64 // pence
}

var creditPacks = map[string]CreditPack{
	"starter":  {Name: "Starter", Credits: 5, PriceGBP: 999},
	"standard": {Name: "Standard", Credits: 12, PriceGBP: 1999},
	"pro":      {Name: "Pro", Credits: 30, PriceGBP: 3999},
}

var subscriptionPlans = map[string]int64{
	"monthly": 2499,
	"yearly":  24999,
}

type BillingService interface {
	PurchaseCredits(userID string, req dto.PurchaseCreditsRequest) (*dto.CheckoutResponse, error)
	Subscribe(userID string, req dto.SubscribeRequest) (*dto.CheckoutResponse, error)
	CancelSubscription(userID string) error
	GetSubscription(userID string) (*dto.SubscriptionResponse, error)

	// HandleWebhook обрабатывает событие Stripe. Подпись проверяется
	// до парсинга тела.
	HandleWebhook(payload []byte, signature string) error
}

type BillingServiceImpl struct {
	profileRepo   repositories.ProfileRepository
	userRepo      repositories.UserRepository
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	log           *slog.Logger
}

func NewBillingService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	secretKey, webhookSecret, frontendBaseURL string,
) BillingService {
	stripe.Key = secretKey
	return &BillingServiceImpl{
		profileRepo:   profileRepo,
		userRepo:      userRepo,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    frontendBaseURL + "/billing/success",
		cancelURL:     frontendBaseURL + "/billing/cancelled",
		log:           logger.GetLogger(),
	}
}

func (s *BillingServiceImpl) PurchaseCredits(userID string, req dto.PurchaseCreditsRequest) (*dto.CheckoutResponse, error) {
	pack, ok := creditPacks[req.Pack]
	if !ok {
		return nil, appErrors.NewBadRequestError("Unknown credit pack")
	}
	if _, err := s.profileRepo.FindByUserID(userID); err != nil {
		return nil, mapProfileError(err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyGBP)),
				UnitAmount: stripe.Int64(pack.PriceGBP),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s credit pack (%d credits)", pack.Name, pack.Credits)),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"kind":    "credits",
			"userId":  userID,
			"credits": fmt.Sprintf("%d", pack.Credits),
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeExternalServiceError, "Failed to create checkout session", 502)
	}
	return &dto.CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (s *BillingServiceImpl) Subscribe(userID string, req dto.SubscribeRequest) (*dto.CheckoutResponse, error) {
	price, ok := subscriptionPlans[req.Plan]
	if !ok {
		return nil, appErrors.NewBadRequestError("Unknown subscription plan")
	}
	if _, err := s.profileRepo.FindByUserID(userID); err != nil {
		return nil, mapProfileError(err)
	}

	interval := "month"
	if req.Plan == "yearly" {
		interval = "year"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyGBP)),
				UnitAmount: stripe.Int64(price),
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String(interval),
				},
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("TradeHub subscription (" + req.Plan + ")"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"kind":   "subscription",
			"userId": userID,
			"plan":   req.Plan,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeExternalServiceError, "Failed to create checkout session", 502)
	}
	return &dto.CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (s *BillingServiceImpl) CancelSubscription(userID string) error {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return mapProfileError(err)
	}
	if profile.SubscriptionStatus != models.SubscriptionStatusActive {
		return appErrors.NewConflictError("No active subscription to cancel")
	}

	profile.SubscriptionStatus = models.SubscriptionStatusCancelled
	if err := s.profileRepo.Update(profile); err != nil {
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *BillingServiceImpl) GetSubscription(userID string) (*dto.SubscriptionResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, mapProfileError(err)
	}
	resp := &dto.SubscriptionResponse{
		Plan:   profile.SubscriptionPlan,
		Status: string(profile.SubscriptionStatus),
	}
	if profile.SubscriptionExpiry != nil {
		resp.ExpiresAt = profile.SubscriptionExpiry.Format(time.RFC3339)
	}
	return resp, nil
}

func (s *BillingServiceImpl) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return appErrors.NewBadRequestError("Invalid webhook signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return appErrors.NewBadRequestError("Malformed webhook payload")
		}
		return s.handleCheckoutCompleted(&sess)
	default:
		// прочие события подтверждаются без обработки
		s.log.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}
}

func (s *BillingServiceImpl) handleCheckoutCompleted(sess *stripe.CheckoutSession) error {
	userID := sess.Metadata["userId"]
	if userID == "" {
		return appErrors.NewBadRequestError("Checkout session missing user metadata")
	}

	switch sess.Metadata["kind"] {
	case "credits":
		var credits int
		if _, err := fmt.Sscanf(sess.Metadata["credits"], "%d", &credits); err != nil || credits <= 0 {
			return appErrors.NewBadRequestError("Checkout session missing credit amount")
		}
		if err := s.profileRepo.AddCredits(userID, credits); err != nil {
			if errors.Is(err, repositories.ErrProfileNotFound) {
				return appErrors.ErrProfileNotFound
			}
			return appErrors.InternalError(err)
		}
		s.log.Info("credits purchased", "userId", userID, "credits", credits)
		return nil

	case "subscription":
		profile, err := s.profileRepo.FindByUserID(userID)
		if err != nil {
			return mapProfileError(err)
		}
		plan := sess.Metadata["plan"]
		expiry := time.Now().AddDate(0, 1, 0)
		if plan == "yearly" {
			expiry = time.Now().AddDate(1, 0, 0)
		}
		profile.SubscriptionPlan = plan
		profile.SubscriptionStatus = models.SubscriptionStatusActive
		profile.SubscriptionExpiry = &expiry
		if sess.Customer != nil {
			profile.StripeCustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			profile.StripeSubscriptionID = sess.Subscription.ID
		}
		if err := s.profileRepo.Update(profile); err != nil {
			return appErrors.InternalError(err)
		}
		s.log.Info("subscription activated", "userId", userID, "plan", plan)
		return nil

	default:
		return appErrors.NewBadRequestError("Unknown checkout kind")
	}
}
