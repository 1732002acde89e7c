// Package integration は外部SaaSとの連携クライアントを提供する。
// Zapier Webhook、Slack API、Zendesk APIの呼び出しを含む。
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// WebhookClient は外部オートメーションのWebhookエンドポイントへ
// JSONペイロードをPOSTするクライアント。
type WebhookClient struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookClient はWebhookClientの新しいインスタンスを生成する。
func NewWebhookClient(httpClient *http.Client, logger *slog.Logger) *WebhookClient {
	return &WebhookClient{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Post はペイロードをJSONエンコードして指定URLへPOSTする。
// 200以外のステータスはエラーとして扱う。レスポンスボディは読み捨てる。
func (c *WebhookClient) Post(ctx context.Context, hookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ペイロードのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Webhookの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	// レート制限時の再送判断は呼び出し元に委ねるため、ボディは破棄する
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Webhookがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
