package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/zipdeck/zipdeck/internal/integration"
	"github.com/zipdeck/zipdeck/internal/model"
)

// GatewayServiceInterface はWebhook連携ハンドラーが必要とするサービスインターフェース。
type GatewayServiceInterface interface {
	CreateMeeting(ctx context.Context, req integration.MeetingRequest) error
	CreateIssue(ctx context.Context, req integration.IssueRequest) error
	SendSupportIssue(ctx context.Context, req integration.SupportIssueRequest) error
}

// SlackServiceInterface はSlack連携ハンドラーが必要とするサービスインターフェース。
type SlackServiceInterface interface {
	ListChannels(ctx context.Context) ([]integration.Channel, error)
	PostMessage(ctx context.Context, channelID, text string) error
}

// TicketServiceInterface はZendeskチケット取得のサービスインターフェース。
type TicketServiceInterface interface {
	FetchTickets(ctx context.Context) (json.RawMessage, error)
}

// IntegrationHandler は外部SaaS連携のHTTPハンドラー。
type IntegrationHandler struct {
	gateway GatewayServiceInterface
	slack   SlackServiceInterface
	tickets TicketServiceInterface
}

// NewIntegrationHandler はIntegrationHandlerを生成する。
func NewIntegrationHandler(gateway GatewayServiceInterface, slack SlackServiceInterface, tickets TicketServiceInterface) *IntegrationHandler {
	return &IntegrationHandler{
		gateway: gateway,
		slack:   slack,
		tickets: tickets,
	}
}

// CreateMeeting はミーティング作成Webhookを呼び出す。
// POST /api/create-meeting
func (h *IntegrationHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Type     string `json:"type"`
		Date     string `json:"date"`
		Duration string `json:"duration"`
		Channel  string `json:"channel"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	err := h.gateway.CreateMeeting(r.Context(), integration.MeetingRequest{
		MeetingTitle: req.Title,
		MeetingType:  req.Type,
		Date:         req.Date,
		Duration:     req.Duration,
		Channel:      req.Channel,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting link created"})
}

// CreateIssue はJira課題作成Webhookを呼び出す。
// POST /api/create-issue
func (h *IntegrationHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var req integration.IssueRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.gateway.CreateIssue(r.Context(), req); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue created on Jira"})
}

// SendIssue はZendeskチケット通知Webhookを呼び出す。
// POST /api/send-issue
func (h *IntegrationHandler) SendIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject      string `json:"subject"`
		Group        string `json:"group"`
		RName        string `json:"rname"`
		REmail       string `json:"remail"`
		Description  string `json:"description"`
		Type         string `json:"type"`
		Priority     string `json:"priority"`
		CustomerType string `json:"customerType"`
		Channel      string `json:"channel"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	err := h.gateway.SendSupportIssue(r.Context(), integration.SupportIssueRequest{
		Subject:      req.Subject,
		Group:        req.Group,
		RequestName:  req.RName,
		RequestEmail: req.REmail,
		Description:  req.Description,
		Type:         req.Type,
		Priority:     req.Priority,
		CustomerType: req.CustomerType,
		Channel:      req.Channel,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Zendesk issue notified to members"})
}

// GetTickets はZendeskのチケット一覧をそのまま返す。
// GET /api/get-tickets
// 認証ゲートなしで公開する。既存クライアント互換のため据え置いている。
func (h *IntegrationHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	raw, err := h.tickets.FetchTickets(r.Context())
	if err != nil {
		slog.Error("チケット一覧の取得に失敗しました", slog.String("error", err.Error()))
		handleServiceError(w, model.NewUpstreamError("zendesk"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// ListChannels はSlackのチャンネル一覧を返す。
// GET /api/channels
func (h *IntegrationHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.slack.ListChannels(r.Context())
	if err != nil {
		slog.Error("チャンネル一覧の取得に失敗しました", slog.String("error", err.Error()))
		handleServiceError(w, model.NewUpstreamError("slack"))
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

// SendMessage はSlackチャンネルへメッセージを投稿する。
// POST /send-message
func (h *IntegrationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channel string `json:"channel"`
		Text    string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.slack.PostMessage(r.Context(), req.Channel, req.Text); err != nil {
		slog.Error("メッセージの投稿に失敗しました", slog.String("error", err.Error()))
		handleServiceError(w, model.NewUpstreamError("slack"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message sent successfully.",
	})
}
