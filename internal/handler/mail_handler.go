package handler

import (
	"context"
	"net/http"

	"github.com/zipdeck/zipdeck/internal/mail"
)

// MailServiceInterface はメールハンドラーが必要とするサービスインターフェース。
type MailServiceInterface interface {
	Dispatch(ctx context.Context, input mail.ContactInput) error
}

// MailHandler は問い合わせメールのHTTPハンドラー。
type MailHandler struct {
	service MailServiceInterface
}

// NewMailHandler はMailHandlerを生成する。
func NewMailHandler(service MailServiceInterface) *MailHandler {
	return &MailHandler{
		service: service,
	}
}

// Send は問い合わせメールの送信を受け付ける。
// POST /api/sendmail
// 送信はバックグラウンドで行われるため202を返す。送信結果はログのみ。
func (h *MailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	err := h.service.Dispatch(r.Context(), mail.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Mail dispatch accepted"})
}
