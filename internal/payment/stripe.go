// Package payment はStripe Checkoutによる決済セッション作成を提供する。
package payment

import (
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/zipdeck/zipdeck/internal/model"
)

// sessionCreator はCheckoutセッション作成APIを抽象化する。テストで差し替える。
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// CheckoutInput はCheckoutセッション作成の入力。
type CheckoutInput struct {
	Title    string // プラン名。商品名・メタデータ・成功URLのクエリに使われる
	Features string // プランの説明文。商品のdescriptionになる
	Price    int64  // 金額（ルピー単位）
	Origin   string // リダイレクト先のオリジン。空の場合はサーバー設定値を使う
}

// CheckoutResult はセッション作成結果。3つのURLをクライアントへ返す。
type CheckoutResult struct {
	URL        string // Stripeの決済ページ
	SuccessURL string
	CancelURL  string
}

// CheckoutService はStripe Checkoutセッションのサービス層。
type CheckoutService struct {
	sessions sessionCreator
	baseURL  string
}

// NewCheckoutService はCheckoutServiceを生成する。
// baseURLはOriginヘッダが無いリクエストのフォールバック先。
func NewCheckoutService(secretKey, baseURL string) *CheckoutService {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &CheckoutService{
		sessions: api.CheckoutSessions,
		baseURL:  baseURL,
	}
}

// productData はプラン名と説明文から商品情報を組み立てる。
// metadataのidにはプラン名をそのまま入れる。
func productData(input CheckoutInput) *stripe.CheckoutSessionLineItemPriceDataProductDataParams {
	data := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:     stripe.String(input.Title),
		Metadata: map[string]string{"id": input.Title},
	}
	if input.Features != "" {
		data.Description = stripe.String(input.Features)
	}
	return data
}

// CreateSession はCheckoutセッションを作成し、決済ページのURLを返す。
// 通貨はINR固定で、金額はルピーからパイサに換算して渡す。
func (s *CheckoutService) CreateSession(input CheckoutInput) (*CheckoutResult, error) {
	if input.Title == "" {
		return nil, model.NewValidationError("title is required")
	}
	if input.Price <= 0 {
		return nil, model.NewValidationError("price must be positive")
	}

	origin := input.Origin
	if origin == "" {
		origin = s.baseURL
	}

	successURL := fmt.Sprintf("%s/success?sub=%s?payment_status=success", origin, input.Title)
	cancelURL := origin + "/plans"

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String("inr"),
					ProductData: productData(input),
					UnitAmount:  stripe.Int64(input.Price * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US", "IN"}),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					Type: stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(200),
						Currency: stripe.String("inr"),
					},
					DisplayName: stripe.String("Free shipping"),
					DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
						Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(5),
						},
						Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(7),
						},
					},
				},
			},
		},
		// 既存のWebクライアントがこのクエリ形式（2つ目の ? も含む）を期待している
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}

	session, err := s.sessions.New(params)
	if err != nil {
		slog.Error("Checkoutセッションの作成に失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamError("stripe")
	}

	slog.Info("Checkoutセッションを作成しました", slog.String("session_id", session.ID))
	return &CheckoutResult{
		URL:        session.URL,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	}, nil
}
