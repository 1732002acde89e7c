// Package sms はSMS配送クライアントを提供する。
package sms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator はTwilio REST APIのメッセージ作成呼び出しを抽象化する。
// テストではこの層で差し替える。
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender はTwilio経由でOTPコードをSMS送信する。
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender はTwilioSenderを生成する。
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{
		api:  client.Api,
		from: from,
	}
}

// SendCode はOTPコードを指定の電話番号へSMSで送信する。
// 本文フォーマットは "OTP : <code>" 固定。
func (s *TwilioSender) SendCode(ctx context.Context, phone, code string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody("OTP : " + code)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS via twilio: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	slog.Info("SMSを送信しました", slog.String("sid", sid))
	return nil
}
