package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ZendeskClient はZendesk REST APIのクライアント。
// メールアドレス+APIトークンのBasic認証でチケット一覧を取得する。
type ZendeskClient struct {
	httpClient *http.Client
	ticketsURL string
	username   string
	apiToken   string
	logger     *slog.Logger
}

// NewZendeskClient はZendeskClientの新しいインスタンスを生成する。
// usernameには "email/token" 形式のAPIトークンユーザー名を渡す。
func NewZendeskClient(httpClient *http.Client, ticketsURL, username, apiToken string, logger *slog.Logger) *ZendeskClient {
	return &ZendeskClient{
		httpClient: httpClient,
		ticketsURL: ticketsURL,
		username:   username,
		apiToken:   apiToken,
		logger:     logger,
	}
}

// FetchTickets はZendeskのチケット一覧をそのまま取得する。
// レスポンスは変換せずJSONのまま呼び出し元へ返す。
func (c *ZendeskClient) FetchTickets(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ticketsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Zendesk APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Zendesk APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("zendesk API returned status %d", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("zendesk API returned invalid JSON")
	}

	return json.RawMessage(body), nil
}
