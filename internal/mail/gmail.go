// Package mail はGmail API経由のメール送信を提供する。
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultGmailSendURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// GmailConfig はGmail API連携の設定。
// リフレッシュトークンは事前の同意フローで取得済みのものを使う。
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RefreshToken string

	// テスト用にオーバーライド可能なURL
	SendURL string
}

// Message は送信するメール。
type Message struct {
	To      string
	Subject string
	Body    string
}

// GmailSender はOAuth2リフレッシュトークンを使ってGmail APIから
// メールを送信する。アクセストークンの更新はTokenSourceに任せる。
type GmailSender struct {
	httpClient *http.Client
	from       string
	sendURL    string
}

// NewGmailSender はGmailSenderを生成する。
// fromは認可済みGoogleアカウントのメールアドレス。
func NewGmailSender(ctx context.Context, cfg GmailConfig, from string) *GmailSender {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://mail.google.com/"},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	sendURL := cfg.SendURL
	if sendURL == "" {
		sendURL = defaultGmailSendURL
	}

	return &GmailSender{
		httpClient: oauth2.NewClient(ctx, tokenSource),
		from:       from,
		sendURL:    sendURL,
	}
}

// Send はメッセージをRFC 822形式に組み立ててGmail APIへ送信する。
func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	raw := buildRawMessage(s.from, msg)

	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return fmt.Errorf("ペイロードのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Gmail APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail API returned status %d", resp.StatusCode)
	}

	return nil
}

// buildRawMessage はRFC 822形式のメールをbase64url（パディングなし）で
// エンコードする。Gmail APIのrawフィールドの要求形式。
func buildRawMessage(from string, msg Message) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return base64.RawURLEncoding.EncodeToString(b.Bytes())
}
