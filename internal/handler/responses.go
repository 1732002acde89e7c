// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zipdeck/zipdeck/internal/middleware"
	"github.com/zipdeck/zipdeck/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("レスポンスの書き込みに失敗しました", slog.String("error", err.Error()))
	}
}

// flexibleString はJSON文字列とJSON数値のどちらも文字列として受け取る。
// 既存のWebクライアントは電話番号を数値で送信するため、両形式を許容する。
type flexibleString string

func (s *flexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexibleString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexibleString(n.String())
	return nil
}

// decodeJSON はリクエストボディをデコードする。
// 不正なJSONはVALIDATION_FAILEDとして呼び出し元へ返す。
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewValidationError("request body must be valid JSON")
	}
	return nil
}

// handleServiceError はサービス層から返されたエラーを統一フォーマットで書き込む。
// APIError以外のエラーは詳細をログに残し、一般的な500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// userResponse はクライアントへ返すユーザー表現。資格情報ハッシュは含めない。
type userResponse struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	City         string `json:"city"`
	Subscription string `json:"subscription"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		City:         u.City,
		Subscription: string(u.Subscription),
	}
}
