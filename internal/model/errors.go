// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 全ルートで単一のエンベロープ形状を使い、コードからHTTPステータスへの
// 変換はhandler層の1箇所で行う。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（クライアント向け）
	Category string // カテゴリ: auth, validation, billing, integration, system
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidOTP         = "INVALID_OTP"
	ErrCodeUpstreamFailed     = "UPSTREAM_FAILED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力不正エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Check the request body and try again.",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Email doesn't exists",
		Category: "auth",
		Action:   "Check the email address or sign up first.",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "User already exists, try logging in.",
		Category: "auth",
		Action:   "Log in with this email instead of signing up.",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// パスワード不一致はエラーではなく「不一致」として扱い、
// ハッシュ破損等の内部障害とは区別する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Login Failed",
		Category: "auth",
		Action:   "Check the password and try again.",
	}
}

// NewInvalidTokenError はセッショントークン不正エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Session is invalid or expired.",
		Category: "auth",
		Action:   "Log in again.",
	}
}

// NewInvalidOTPError はOTP検証失敗エラーを生成する。
// 未発行・不一致・消費済みのいずれもこのエラーになる。
func NewInvalidOTPError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOTP,
		Message:  "Invalid OTP",
		Category: "auth",
		Action:   "Request a new code and try again.",
	}
}

// NewUpstreamError は外部サービス呼び出し失敗エラーを生成する。
// serviceには呼び出し先の名前（slack, zendesk等）を渡す。
func NewUpstreamError(service string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  fmt.Sprintf("The %s service could not be reached.", service),
		Category: "integration",
		Action:   "Wait a moment and try again.",
	}
}

// NewInternalError は内部障害エラーを生成する。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Something Went Wrong, Try Again Later",
		Category: "system",
		Action:   "Wait a moment and try again.",
	}
}
