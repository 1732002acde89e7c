package integration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zipdeck/zipdeck/internal/model"
)

// hookPoster はWebhookへのJSON POSTを抽象化する。テストで差し替える。
type hookPoster interface {
	Post(ctx context.Context, hookURL string, payload any) error
}

// MetricsRecorder は外部呼び出しの結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordUpstreamCall(service string, success bool)
}

// MeetingRequest はミーティング作成Webhookのペイロード。
// フィールド名は受け側オートメーションの期待する形に固定されている。
type MeetingRequest struct {
	MeetingTitle string `json:"meetingTitle"`
	MeetingType  string `json:"meetingType"`
	Date         string `json:"date"`
	Duration     string `json:"duration"`
	Channel      string `json:"channel"`
}

// IssueRequest はJira課題作成Webhookのペイロード。
type IssueRequest struct {
	Summary     string `json:"summary"`
	Desc        string `json:"desc"`
	ProjectID   string `json:"project_id"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	MeetingDate string `json:"meeting_date"`
	Duration    string `json:"duration"`
	Channel     string `json:"channel"`
}

// SupportIssueRequest はZendeskチケット通知Webhookのペイロード。
type SupportIssueRequest struct {
	Subject      string `json:"subject"`
	Group        string `json:"group"`
	RequestName  string `json:"request_name"`
	RequestEmail string `json:"request_email"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Priority     string `json:"priority"`
	CustomerType string `json:"customer_type"`
	Channel      string `json:"channel"`
}

// Gateway は各Webhook連携のサービス層。
// ペイロードをそのまま転送し、変換やリトライは行わない。
type Gateway struct {
	poster         hookPoster
	meetingHookURL string
	jiraHookURL    string
	zendeskHookURL string
	metrics        MetricsRecorder
}

// NewGateway はGatewayの新しいインスタンスを生成する。metricsはnilでもよい。
func NewGateway(poster hookPoster, meetingHookURL, jiraHookURL, zendeskHookURL string, metrics MetricsRecorder) *Gateway {
	return &Gateway{
		poster:         poster,
		meetingHookURL: meetingHookURL,
		jiraHookURL:    jiraHookURL,
		zendeskHookURL: zendeskHookURL,
		metrics:        metrics,
	}
}

// CreateMeeting はミーティング作成Webhookを呼び出す。
func (g *Gateway) CreateMeeting(ctx context.Context, req MeetingRequest) error {
	return g.post(ctx, "zoom", g.meetingHookURL, req)
}

// CreateIssue はJira課題作成Webhookを呼び出す。
func (g *Gateway) CreateIssue(ctx context.Context, req IssueRequest) error {
	return g.post(ctx, "jira", g.jiraHookURL, req)
}

// SendSupportIssue はZendeskチケット通知Webhookを呼び出す。
func (g *Gateway) SendSupportIssue(ctx context.Context, req SupportIssueRequest) error {
	return g.post(ctx, "zendesk", g.zendeskHookURL, req)
}

func (g *Gateway) post(ctx context.Context, service, hookURL string, payload any) error {
	if hookURL == "" {
		return fmt.Errorf("%s webhook URL is not configured", service)
	}

	err := g.poster.Post(ctx, hookURL, payload)
	if g.metrics != nil {
		g.metrics.RecordUpstreamCall(service, err == nil)
	}
	if err != nil {
		slog.Error("Webhook連携に失敗しました",
			slog.String("service", service),
			slog.String("error", err.Error()),
		)
		return model.NewUpstreamError(service)
	}

	slog.Info("Webhook連携が完了しました", slog.String("service", service))
	return nil
}
