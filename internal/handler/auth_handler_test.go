package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zipdeck/zipdeck/internal/account"
	"github.com/zipdeck/zipdeck/internal/middleware"
	"github.com/zipdeck/zipdeck/internal/model"
)

type mockAccountService struct {
	signupFunc  func(ctx context.Context, input account.SignupInput) (*model.User, error)
	loginFunc   func(ctx context.Context, email, password string) (*account.LoginResult, error)
	profileFunc func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAccountService) Signup(ctx context.Context, input account.SignupInput) (*model.User, error) {
	if m.signupFunc != nil {
		return m.signupFunc(ctx, input)
	}
	return &model.User{ID: "user-1"}, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*account.LoginResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, model.NewUserNotFoundError()
}

func (m *mockAccountService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if m.profileFunc != nil {
		return m.profileFunc(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{CookieMaxAge: 15 * 24 * 60 * 60}
}

func TestAuthHandler_Signup(t *testing.T) {
	var gotInput account.SignupInput
	svc := &mockAccountService{
		signupFunc: func(ctx context.Context, input account.SignupInput) (*model.User, error) {
			gotInput = input
			return &model.User{ID: "user-1"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := `{"name":"Taro","email":"taro@example.com","password":"secret","mobile":"+819012345678","city":"Tokyo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotInput.Email != "taro@example.com" || gotInput.Mobile != "+819012345678" {
		t.Errorf("input = %+v, want request fields mapped", gotInput)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["msg"] != "Signup Successfully" {
		t.Errorf("msg = %q, want Signup Successfully", resp["msg"])
	}
}

// 既存のWebクライアントは電話番号をJSON数値で送るため、
// 文字列・数値どちらの形式でも受理されることを検証する。
func TestAuthHandler_SignupNumericMobile(t *testing.T) {
	var gotInput account.SignupInput
	svc := &mockAccountService{
		signupFunc: func(ctx context.Context, input account.SignupInput) (*model.User, error) {
			gotInput = input
			return &model.User{ID: "user-1"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := `{"name":"Taro","email":"taro@example.com","password":"secret","mobile":9812345678,"city":"Tokyo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotInput.Mobile != "9812345678" {
		t.Errorf("mobile = %q, want numeric payload normalized to string", gotInput.Mobile)
	}
}

func TestAuthHandler_SignupDuplicate(t *testing.T) {
	svc := &mockAccountService{
		signupFunc: func(ctx context.Context, input account.SignupInput) (*model.User, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(`{"name":"T","email":"t@e.com","password":"p"}`))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	var resp middleware.ErrorResponseBody
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != model.ErrCodeEmailTaken {
		t.Errorf("code = %q, want EMAIL_TAKEN", resp.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &mockAccountService{
		loginFunc: func(ctx context.Context, email, password string) (*account.LoginResult, error) {
			return &account.LoginResult{
				User: &model.User{
					ID:     "user-1",
					Name:   "Taro",
					Email:  email,
					Mobile: "+819012345678",
					City:   "Tokyo",
				},
				Token: "signed-token",
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"taro@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Cookie属性の検証
	cookies := rec.Result().Cookies()
	var tokenCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "token" {
			tokenCookie = c
		}
	}
	if tokenCookie == nil {
		t.Fatal("expected token cookie to be set")
	}
	if tokenCookie.Value != "signed-token" {
		t.Errorf("cookie value = %q, want signed-token", tokenCookie.Value)
	}
	if !tokenCookie.HttpOnly || !tokenCookie.Secure {
		t.Error("cookie must be HttpOnly and Secure")
	}
	if tokenCookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %v, want None", tokenCookie.SameSite)
	}
	if tokenCookie.Path != "/" {
		t.Errorf("Path = %q, want /", tokenCookie.Path)
	}
	if tokenCookie.MaxAge != 15*24*60*60 {
		t.Errorf("MaxAge = %d, want 15 days in seconds", tokenCookie.MaxAge)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	for key, want := range map[string]string{
		"_id":    "user-1",
		"name":   "Taro",
		"email":  "taro@example.com",
		"mobile": "+819012345678",
		"city":   "Tokyo",
		"token":  "signed-token",
	} {
		if resp[key] != want {
			t.Errorf("body[%q] = %q, want %q", key, resp[key], want)
		}
	}
}

func TestAuthHandler_LoginUnknownEmail(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"x@e.com","password":"p"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	svc := &mockAccountService{
		loginFunc: func(ctx context.Context, email, password string) (*account.LoginResult, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"x@e.com","password":"bad"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// token と補助Cookieがすべて失効していること
	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 && c.Value == "" {
			cleared[c.Name] = true
		}
	}
	for _, name := range []string{"token", "user_id", "user_email"} {
		if !cleared[name] {
			t.Errorf("expected cookie %q to be cleared", name)
		}
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "Logout successful" {
		t.Errorf("message = %q, want Logout successful", resp["message"])
	}
}

func TestAuthHandler_ProfileUnauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	h.Profile(rec, req)

	// 未認証はエラーではなくnullボディ
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Errorf("body = %q, want null", got)
	}
}

func TestAuthHandler_ProfileFeatureFlags(t *testing.T) {
	tests := []struct {
		tier    model.SubscriptionTier
		basic   bool
		medium  bool
		premium bool
	}{
		{model.TierBasic, true, false, false},
		{model.TierMedium, true, true, false},
		{model.TierPremium, true, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			svc := &mockAccountService{
				profileFunc: func(ctx context.Context, userID string) (*model.User, error) {
					return &model.User{ID: userID, Subscription: tt.tier}, nil
				},
			}
			h := NewAuthHandler(svc, testAuthConfig())

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			ctx := middleware.ContextWithIdentity(req.Context(), middleware.Identity{UserID: "user-1", Email: "t@e.com"})
			rec := httptest.NewRecorder()
			h.Profile(rec, req.WithContext(ctx))

			var resp profileResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if resp.BasicFeature != tt.basic || resp.MediumFeature != tt.medium || resp.PremiumFeature != tt.premium {
				t.Errorf("flags = %v/%v/%v, want %v/%v/%v",
					resp.BasicFeature, resp.MediumFeature, resp.PremiumFeature,
					tt.basic, tt.medium, tt.premium)
			}
		})
	}
}
