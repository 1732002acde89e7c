package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockVerifier struct {
	verifyFunc func(token string) (string, string, error)
}

func (m *mockVerifier) Verify(token string) (string, string, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(token)
	}
	return "", "", errors.New("not implemented")
}

// identityProbe は下流ハンドラとして認証情報の注入を観測する。
func identityProbe(got *Identity, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		*got = identity
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(token string) (string, string, error) {
			if token != "valid-token" {
				t.Errorf("token = %q, want valid-token", token)
			}
			return "user-1", "taro@example.com", nil
		},
	}

	var got Identity
	var found bool
	handler := NewAuthMiddleware(verifier)(identityProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/api/cur-user", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !found {
		t.Fatal("expected identity to be injected")
	}
	if got.UserID != "user-1" || got.Email != "taro@example.com" {
		t.Errorf("identity = %+v, want user-1 / taro@example.com", got)
	}
}

func TestAuthMiddleware_NoCookie(t *testing.T) {
	var got Identity
	var found bool
	handler := NewAuthMiddleware(&mockVerifier{})(identityProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/api/cur-user", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Cookieなしでもリクエストは下流へ通す
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if found {
		t.Error("expected no identity without cookie")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(token string) (string, string, error) {
			return "", "", errors.New("signature is invalid")
		},
	}

	var got Identity
	var found bool
	handler := NewAuthMiddleware(verifier)(identityProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/api/cur-user", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tampered"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// 無効なトークンは未認証として下流へ通す
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if found {
		t.Error("expected no identity for invalid token")
	}
}

func TestIdentityFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("expected no identity in fresh context")
	}
}
