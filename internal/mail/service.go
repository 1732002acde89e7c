package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/zipdeck/zipdeck/internal/model"
)

// dispatchTimeout はバックグラウンド送信1件あたりの上限時間。
const dispatchTimeout = 30 * time.Second

// Sender はメール送信のインターフェース。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MetricsRecorder はメール送信結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordMailDispatch(success bool)
}

// ContactInput は問い合わせフォームの入力。
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// Service は問い合わせメールのサービス層。
// 送信はリクエスト処理から切り離してバックグラウンドで行い、
// 結果はログとメトリクスにのみ残す。
type Service struct {
	sender    Sender
	sanitizer *bluemonday.Policy
	to        string
	metrics   MetricsRecorder

	// テスト用の同期フック。nilでなければ送信goroutineの完了時に呼ばれる。
	onDone func(err error)
}

// NewService はServiceの新しいインスタンスを生成する。
// toは問い合わせの通知先アドレス。metricsはnilでもよい。
func NewService(sender Sender, to string, metrics MetricsRecorder) *Service {
	return &Service{
		sender:    sender,
		sanitizer: bluemonday.StrictPolicy(),
		to:        to,
		metrics:   metrics,
	}
}

// Dispatch は問い合わせ内容を検証しバックグラウンド送信を開始する。
// 戻り値のnilは受理を意味し、送信の成否は保証しない。
func (s *Service) Dispatch(ctx context.Context, input ContactInput) error {
	name := s.sanitize(input.Name)
	email := s.sanitize(input.Email)
	message := s.sanitize(input.Message)

	switch {
	case name == "":
		return model.NewValidationError("name is required")
	case email == "":
		return model.NewValidationError("email is required")
	case message == "":
		return model.NewValidationError("message is required")
	}

	msg := Message{
		To:      s.to,
		Subject: fmt.Sprintf("%s sent you a message", email),
		Body:    fmt.Sprintf("Message from %s: %s", name, message),
	}

	go s.send(msg)
	return nil
}

// send はバックグラウンドでメールを送信する。
// 呼び出し元のリクエストコンテキストとは切り離した独自の期限を使う。
func (s *Service) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	err := s.sender.Send(ctx, msg)
	if s.metrics != nil {
		s.metrics.RecordMailDispatch(err == nil)
	}
	if err != nil {
		slog.Error("問い合わせメールの送信に失敗しました",
			slog.String("error", err.Error()),
		)
	} else {
		slog.Info("問い合わせメールを送信しました")
	}

	if s.onDone != nil {
		s.onDone(err)
	}
}

// sanitize はHTMLタグを除去し前後の空白を取り除く。
func (s *Service) sanitize(v string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(v))
}
