// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zipdeck/zipdeck/internal/account"
	"github.com/zipdeck/zipdeck/internal/config"
	"github.com/zipdeck/zipdeck/internal/credential"
	"github.com/zipdeck/zipdeck/internal/database"
	"github.com/zipdeck/zipdeck/internal/handler"
	"github.com/zipdeck/zipdeck/internal/integration"
	"github.com/zipdeck/zipdeck/internal/logger"
	"github.com/zipdeck/zipdeck/internal/mail"
	"github.com/zipdeck/zipdeck/internal/metrics"
	"github.com/zipdeck/zipdeck/internal/middleware"
	"github.com/zipdeck/zipdeck/internal/otp"
	"github.com/zipdeck/zipdeck/internal/payment"
	"github.com/zipdeck/zipdeck/internal/repository"
	"github.com/zipdeck/zipdeck/internal/security"
	"github.com/zipdeck/zipdeck/internal/sms"
	"github.com/zipdeck/zipdeck/internal/token"
)

// otpSweepInterval はOTPストアの期限切れ掃除の実行間隔。
const otpSweepInterval = time.Minute

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// tokenAdapter はトークンサービスをハンドラ層・ミドルウェア層の
// インターフェースに合わせる薄いアダプタ。
type tokenAdapter struct {
	svc *token.Service
}

func (a tokenAdapter) Issue(userID, email string) (string, error) {
	return a.svc.Issue(email, userID)
}

func (a tokenAdapter) Verify(tokenString string) (string, string, error) {
	claims, err := a.svc.Verify(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Email, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. 連携先URLの検証とSSRF防止付きクライアント
	guard := security.NewEgressGuard()
	for name, u := range map[string]string{
		"MEETING_HOOK_URL":    cfg.MeetingHookURL,
		"JIRA_HOOK_URL":       cfg.JiraHookURL,
		"ZENDESK_HOOK_URL":    cfg.ZendeskHookURL,
		"ZENDESK_TICKETS_URL": cfg.ZendeskTicketsURL,
	} {
		if u == "" {
			continue
		}
		if err := guard.ValidateURL(u); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	egressClient := guard.NewSafeClient(15 * time.Second)

	// 4. 基盤サービス
	userRepo := repository.NewPostgresUserRepo(db)
	hasher := credential.NewHasher()
	tokenSvc := token.NewService(cfg.TokenSecret, cfg.TokenTTL)
	tokens := tokenAdapter{svc: tokenSvc}

	// 5. ドメインサービス
	accountSvc := account.NewService(userRepo, hasher, tokens)

	otpStore := otp.NewMemoryStore(cfg.OTPTTL)
	smsSender := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	otpSvc := otp.NewService(otpStore, smsSender, collector)

	webhookClient := integration.NewWebhookClient(egressClient, slog.Default())
	gatewaySvc := integration.NewGateway(webhookClient, cfg.MeetingHookURL, cfg.JiraHookURL, cfg.ZendeskHookURL, collector)
	slackClient := integration.NewSlackClient(egressClient, cfg.SlackToken, slog.Default())
	zendeskClient := integration.NewZendeskClient(egressClient, cfg.ZendeskTicketsURL, cfg.ZendeskUsername, cfg.ZendeskAPIToken, slog.Default())

	gmailSender := mail.NewGmailSender(context.Background(), mail.GmailConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		RefreshToken: cfg.GoogleRefreshToken,
	}, cfg.MailFrom)
	mailSvc := mail.NewService(gmailSender, cfg.MailTo, collector)

	checkoutSvc := payment.NewCheckoutService(cfg.StripeSecretKey, cfg.CORSAllowedOrigin)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		TokenVerifier:     tokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		Metrics:           collector,
		MetricsGatherer:   registry,
		DB:                db,

		AccountService: accountSvc,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain: cfg.CookieDomain,
			CookieMaxAge: int(cfg.TokenTTL.Seconds()),
		},
		UserService:     accountSvc,
		OTPService:      otpSvc,
		GatewayService:  gatewaySvc,
		SlackService:    slackClient,
		TicketService:   zendeskClient,
		MailService:     mailSvc,
		CheckoutService: checkoutSvc,
		SubscriptionSvc: accountSvc,
	}

	router := handler.NewRouter(deps)

	// 7. バックグラウンドジョブ
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	if cfg.OTPTTL > 0 {
		go otpStore.StartSweeper(jobCtx, otpSweepInterval)
	}

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
