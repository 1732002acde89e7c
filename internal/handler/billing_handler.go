package handler

import (
	"context"
	"net/http"

	"github.com/zipdeck/zipdeck/internal/model"
	"github.com/zipdeck/zipdeck/internal/payment"
)

// CheckoutServiceInterface は決済ハンドラーが必要とするサービスインターフェース。
type CheckoutServiceInterface interface {
	CreateSession(input payment.CheckoutInput) (*payment.CheckoutResult, error)
}

// SubscriptionServiceInterface は購読プラン更新のサービスインターフェース。
type SubscriptionServiceInterface interface {
	UpdateSubscription(ctx context.Context, userID, tier string) (*model.User, error)
}

// BillingHandler は決済と購読プラン管理のHTTPハンドラー。
type BillingHandler struct {
	checkout      CheckoutServiceInterface
	subscriptions SubscriptionServiceInterface
}

// NewBillingHandler はBillingHandlerを生成する。
func NewBillingHandler(checkout CheckoutServiceInterface, subscriptions SubscriptionServiceInterface) *BillingHandler {
	return &BillingHandler{
		checkout:      checkout,
		subscriptions: subscriptions,
	}
}

// CreateCheckoutSession はStripe Checkoutセッションを作成する。
// POST /api/create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Features string `json:"features"`
		Price    int64  `json:"price"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.checkout.CreateSession(payment.CheckoutInput{
		Title:    req.Title,
		Features: req.Features,
		Price:    req.Price,
		Origin:   r.Header.Get("Origin"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":     result.URL,
		"success": result.SuccessURL,
		"cancel":  result.CancelURL,
	})
}

// UpdateSubscription はユーザーの購読プランを更新する。
// PUT /api/subscription
func (h *BillingHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID           string `json:"id"`
		Subscription string `json:"subscription"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := h.subscriptions.UpdateSubscription(r.Context(), req.ID, req.Subscription)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}
