// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

const authCookieName = "token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証情報を格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity は検証済みセッショントークンから得た認証情報。
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier はセッショントークンの検証インターフェース。
type TokenVerifier interface {
	Verify(token string) (userID, email string, err error)
}

// NewAuthMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 検証済みの認証情報をリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い、または無効なリクエストも下流へ通す。認証必須のルートは
// ハンドラ側でIdentityFromContextの有無を判定する。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(authCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, email, err := verifier.Verify(cookie.Value)
			if err != nil {
				// 無効なトークンは未認証として扱う
				slog.Warn("無効なセッショントークンを受信しました",
					slog.String("path", r.URL.Path),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithIdentity(r.Context(), Identity{UserID: userID, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext はリクエストコンテキストから認証情報を取得する。
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok && identity.UserID != ""
}

// ContextWithIdentity はコンテキストに認証情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
