package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zipdeck/zipdeck/internal/metrics"
	"github.com/zipdeck/zipdeck/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           *metrics.Collector
	MetricsGatherer   prometheus.Gatherer

	// ヘルスチェック用のDB接続。nilの場合はDB確認を省略する。
	DB *sql.DB

	// サービス
	AccountService  AccountServiceInterface
	AuthConfig      AuthHandlerConfig
	UserService     UserServiceInterface
	OTPService      OTPServiceInterface
	GatewayService  GatewayServiceInterface
	SlackService    SlackServiceInterface
	TicketService   TicketServiceInterface
	MailService     MailServiceInterface
	CheckoutService CheckoutServiceInterface
	SubscriptionSvc SubscriptionServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Auth → Logging
//
// レート制限はOTPルート以外のAPIグループに適用する。OTPルートは既存の
// 挙動（制限なし）に合わせて素通しにしている。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

	// 型付きnilをインターフェースに入れないため、非nilの場合のみ渡す
	var httpMetrics middleware.HTTPMetricsRecorder
	if deps.Metrics != nil {
		httpMetrics = deps.Metrics
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, httpMetrics))

	authHandler := NewAuthHandler(deps.AccountService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	otpHandler := NewOTPHandler(deps.OTPService)
	integrationHandler := NewIntegrationHandler(deps.GatewayService, deps.SlackService, deps.TicketService)
	mailHandler := NewMailHandler(deps.MailService)
	billingHandler := NewBillingHandler(deps.CheckoutService, deps.SubscriptionSvc)

	// 運用エンドポイント
	r.Get("/health", newHealthHandler(deps.DB))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// OTPルートはレート制限なし
	r.Route("/api", func(r chi.Router) {
		r.Post("/send-otp", otpHandler.Send)
		r.Post("/verify-otp", otpHandler.Verify)
	})

	// レート制限付きのAPIグループ
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		// アカウント
		r.Post("/api/signup", authHandler.Signup)
		r.Post("/api/login", authHandler.Login)
		r.Get("/api/logout", authHandler.Logout)
		r.Get("/api/profile", authHandler.Profile)
		r.Get("/api/users", userHandler.List)

		// 外部連携
		r.Post("/api/create-meeting", integrationHandler.CreateMeeting)
		r.Post("/api/create-issue", integrationHandler.CreateIssue)
		r.Post("/api/send-issue", integrationHandler.SendIssue)
		r.Get("/api/get-tickets", integrationHandler.GetTickets)
		r.Get("/api/channels", integrationHandler.ListChannels)
		// 歴史的経緯で /api プレフィックスなし
		r.Post("/send-message", integrationHandler.SendMessage)

		// メール
		r.Post("/api/sendmail", mailHandler.Send)

		// 決済・購読
		r.Post("/api/create-checkout-session", billingHandler.CreateCheckoutSession)
		r.Put("/api/subscription", billingHandler.UpdateSubscription)
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("ヘルスチェックでDB疎通に失敗しました", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
