package handler

import (
	"context"
	"net/http"
)

// OTPServiceInterface はOTPハンドラーが必要とするサービスインターフェース。
type OTPServiceInterface interface {
	Generate(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, phone, code string) error
}

// OTPHandler はOTP発行・検証のHTTPハンドラー。
type OTPHandler struct {
	service OTPServiceInterface
}

// NewOTPHandler はOTPHandlerを生成する。
func NewOTPHandler(service OTPServiceInterface) *OTPHandler {
	return &OTPHandler{
		service: service,
	}
}

// Send はOTPコードを発行しSMSで送信する。
// POST /api/send-otp
// コード自体はレスポンスに含めない。
func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if _, err := h.service.Generate(r.Context(), req.Mobile); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Verify はOTPコードを検証する。
// POST /api/verify-otp
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
		OTP    string `json:"otp"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Verify(r.Context(), req.Mobile, req.OTP); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
