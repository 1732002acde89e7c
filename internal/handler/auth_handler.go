package handler

import (
	"context"
	"net/http"

	"github.com/zipdeck/zipdeck/internal/account"
	"github.com/zipdeck/zipdeck/internal/middleware"
	"github.com/zipdeck/zipdeck/internal/model"
)

const authCookieName = "token"

// auxiliaryCookies はログアウト時に併せてクリアする旧形式のCookie。
// 以前のクライアントが設定していたものを掃除する。
var auxiliaryCookies = []string{"user_id", "user_email"}

// AccountServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	Signup(ctx context.Context, input account.SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*account.LoginResult, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインアップ・ログイン・プロフィール関連のHTTPハンドラー。
type AuthHandler struct {
	service AccountServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AccountServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Signup は新規ユーザーを登録する。
// POST /api/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Mobile   flexibleString `json:"mobile"`
		City     string         `json:"city"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	_, err := h.service.Signup(r.Context(), account.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Mobile:   string(req.Mobile),
		City:     req.City,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "Signup Successfully"})
}

// Login はログインを処理し、セッショントークンをCookieに設定する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)

	// 既存のWebクライアントが期待するフラット形状。トークンはCookieと
	// ボディの両方で返す。
	writeJSON(w, http.StatusOK, map[string]string{
		"_id":    result.User.ID,
		"name":   result.User.Name,
		"email":  result.User.Email,
		"mobile": result.User.Mobile,
		"city":   result.User.City,
		"token":  result.Token,
	})
}

// Logout はセッションCookieをクリアする。
// GET /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, authCookieName)
	for _, name := range auxiliaryCookies {
		h.clearCookie(w, name)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// profileResponse はプロフィールに購読プラン由来の機能フラグを載せた形。
type profileResponse struct {
	userResponse
	BasicFeature   bool `json:"basicFeature"`
	MediumFeature  bool `json:"mediumFeature"`
	PremiumFeature bool `json:"premiumFeature"`
}

// Profile は現在のログインユーザーのプロフィールを返す。
// GET /api/profile
// 未認証の場合はエラーではなくnullボディの200を返す。
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := h.service.Profile(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := profileResponse{userResponse: newUserResponse(user)}
	switch user.Subscription {
	case model.TierPremium:
		resp.BasicFeature = true
		resp.MediumFeature = true
		resp.PremiumFeature = true
	case model.TierMedium:
		resp.BasicFeature = true
		resp.MediumFeature = true
	default:
		resp.BasicFeature = true
	}

	writeJSON(w, http.StatusOK, resp)
}

// setSessionCookie はセッショントークンのCookieを設定する。
// クロスオリジンのクライアントから送信できるようSameSite=Noneにする。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.CookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clearCookie は指定Cookieを失効させる。
func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
