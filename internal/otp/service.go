package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/zipdeck/zipdeck/internal/model"
)

// コードは1000〜9999の一様乱数（常に4桁）。
const (
	codeMin   = 1000
	codeRange = 9000
)

// Sender はOTPコードの配送インターフェース。
// 実運用ではSMS（Twilio）が背後にいる。
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// MetricsRecorder はOTPの発行・検証結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordOTPIssued()
	RecordOTPVerified(success bool)
}

// Service はOTPの発行と検証のビジネスロジックを提供する。
// 同一電話番号への並行した発行は直列化されない（最後の書き込みが勝つ）。
type Service struct {
	store   Store
	sender  Sender
	metrics MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(store Store, sender Sender, metrics MetricsRecorder) *Service {
	return &Service{
		store:   store,
		sender:  sender,
		metrics: metrics,
	}
}

// Generate は4桁のコードを生成・保管し、外部の配送サービスへ送信する。
// 既存のコードは上書きされる。配送に失敗した場合もコードは保管されたまま
// エラーを返す（再送リクエストで上書きされる）。
func (s *Service) Generate(ctx context.Context, phone string) (string, error) {
	if phone == "" {
		return "", model.NewValidationError("mobile is required")
	}

	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}

	s.store.Put(phone, code)
	if s.metrics != nil {
		s.metrics.RecordOTPIssued()
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		slog.Error("OTPコードの送信に失敗しました",
			slog.String("error", err.Error()),
		)
		return "", model.NewUpstreamError("sms")
	}

	slog.Info("OTPコードを送信しました", slog.String("mobile", maskPhone(phone)))
	return code, nil
}

// Verify は電話番号とコードの組を検証する。
// 一致した場合はコードを削除して成功を返す（単回使用）。
// 未発行・不一致はいずれもINVALID_OTP。
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	stored, ok := s.store.Get(phone)
	if !ok || stored != code {
		if s.metrics != nil {
			s.metrics.RecordOTPVerified(false)
		}
		return model.NewInvalidOTPError()
	}

	s.store.Delete(phone)
	if s.metrics != nil {
		s.metrics.RecordOTPVerified(true)
	}
	return nil
}

// randomCode は暗号的に安全な乱数から4桁コードを生成する。
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

// maskPhone はログ出力用に電話番号の末尾以外を伏せる。
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
