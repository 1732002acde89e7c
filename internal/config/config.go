// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session token
	TokenSecret string
	TokenTTL    time.Duration

	// OTP
	OTPTTL time.Duration // 0 = 無期限（検証または上書きまで有効）

	// Webhooks
	MeetingHookURL string
	JiraHookURL    string
	ZendeskHookURL string

	// Zendesk tickets API
	ZendeskTicketsURL string
	ZendeskUsername   string
	ZendeskAPIToken   string

	// Slack
	SlackToken string

	// Gmail relay (OAuth2)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleRefreshToken string
	MailFrom           string
	MailTo             string

	// Stripe
	StripeSecretKey string

	// Twilio
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// 外部連携のクレデンシャルは任意項目とし、未設定のまま該当ルートを
// 呼び出した場合は実行時にupstream failureとして表面化する。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	if cfg.TokenSecret == "" {
		missing = append(missing, "TOKEN_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 15*24*time.Hour)
	cfg.OTPTTL = getEnvDuration("OTP_TTL", 0)

	cfg.MeetingHookURL = os.Getenv("MEETING_HOOK_URL")
	cfg.JiraHookURL = os.Getenv("JIRA_HOOK_URL")
	cfg.ZendeskHookURL = os.Getenv("ZENDESK_HOOK_URL")

	cfg.ZendeskTicketsURL = os.Getenv("ZENDESK_TICKETS_URL")
	cfg.ZendeskUsername = os.Getenv("ZENDESK_USERNAME")
	cfg.ZendeskAPIToken = os.Getenv("ZENDESK_API_TOKEN")

	cfg.SlackToken = os.Getenv("SLACK_TOKEN")

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	cfg.GoogleRefreshToken = os.Getenv("GOOGLE_REFRESH_TOKEN")
	cfg.MailFrom = os.Getenv("MAIL_FROM")
	cfg.MailTo = os.Getenv("MAIL_TO")

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")

	cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.TwilioFromNumber = os.Getenv("TWILIO_FROM_NUMBER")

	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
