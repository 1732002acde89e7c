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

const defaultSlackBaseURL = "https://slack.com/api"

// Channel はSlackチャンネルの表示用サブセット。
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SlackClient はSlack Web APIのクライアント。
// Bot Tokenによる認証でconversations.listとchat.postMessageを呼び出す。
type SlackClient struct {
	httpClient *http.Client
	token      string
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewSlackClient はSlackClientの新しいインスタンスを生成する。
func NewSlackClient(httpClient *http.Client, token string, logger *slog.Logger) *SlackClient {
	return &SlackClient{
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		baseURL:    defaultSlackBaseURL,
	}
}

// slackEnvelope はSlack APIレスポンスの共通部分。
// HTTPステータスは常に200で、成否はokフィールドで判定する。
type slackEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ListChannels はワークスペースのパブリックチャンネル一覧を取得する。
// 返すのはIDと名前のみ。
func (c *SlackClient) ListChannels(ctx context.Context) ([]Channel, error) {
	body, err := c.call(ctx, http.MethodGet, "/conversations.list", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		slackEnvelope
		Channels []Channel `json:"channels"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レスポンスのデコードに失敗しました: %w", err)
	}
	if !result.OK {
		return nil, fmt.Errorf("slack API error: %s", result.Error)
	}

	return result.Channels, nil
}

// PostMessage は指定チャンネルへBlock Kit形式のメッセージを投稿する。
// ブロック構成はテキストセクション、区切り線、確認ボタンの3つで固定。
func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string) error {
	// トップレベルのtextはBlock Kit非対応クライアントと通知向けのフォールバック
	payload := map[string]any{
		"channel": channelID,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "divider",
			},
			{
				"type": "actions",
				"elements": []map[string]any{
					{
						"type": "button",
						"text": map[string]any{
							"type": "plain_text",
							"text": "Click me!",
						},
						"action_id": "button_click",
					},
				},
			},
		},
	}

	body, err := c.call(ctx, http.MethodPost, "/chat.postMessage", payload)
	if err != nil {
		return err
	}

	var result slackEnvelope
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("レスポンスのデコードに失敗しました: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack API error: %s", result.Error)
	}

	c.logger.Info("Slackメッセージを投稿しました", slog.String("channel", channelID))
	return nil
}

// call はSlack Web APIを呼び出し、レスポンスボディを返す。
func (c *SlackClient) call(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ペイロードのエンコードに失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Slack APIの呼び出しに失敗しました",
			slog.String("path", path),
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
		c.logger.Error("Slack APIがエラーステータスを返しました",
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	return body, nil
}
