package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/zipdeck/zipdeck/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// statusByCode はエラーコードからHTTPステータスへの変換表。
// 変換はここ1箇所だけで行い、ハンドラごとの分岐は持たない。
var statusByCode = map[string]int{
	model.ErrCodeValidationFailed:   http.StatusBadRequest,
	model.ErrCodeInvalidOTP:         http.StatusBadRequest,
	model.ErrCodeInvalidCredentials: http.StatusUnauthorized,
	model.ErrCodeInvalidToken:       http.StatusUnauthorized,
	model.ErrCodeUserNotFound:       http.StatusNotFound,
	model.ErrCodeEmailTaken:         http.StatusConflict,
	model.ErrCodeUpstreamFailed:     http.StatusBadGateway,
	model.ErrCodeInternal:           http.StatusInternalServerError,
}

// StatusForAPIError はAPIエラーに対応するHTTPステータスを返す。
// 未知のコードは500として扱う。
func StatusForAPIError(apiErr *model.APIError) int {
	if status, ok := statusByCode[apiErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteAPIError は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusForAPIError(apiErr))
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError())
}
