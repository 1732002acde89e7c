// Package token は署名付きセッショントークンの発行と検証を提供する。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zipdeck/zipdeck/internal/model"
)

// Claims はセッショントークンに埋め込むクレーム。
// JSONのフィールド名はWebクライアントが既に依存している形に合わせる。
type Claims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	UserID string `json:"id"`
}

// Service はHMAC署名によるトークンの発行・検証を行う。
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService はServiceを生成する。
// ttlは発行するトークンの有効期間（既定は15日）。
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue はemailとuserIDを埋め込んだ署名付きトークンを発行する。
// 有効期限は発行時刻 + TTL。
func (s *Service) Issue(email, userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:  email,
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 署名不一致・形式不正・期限切れはいずれもINVALID_TOKENになる。
// エラー時のクレームを信用してはならない。
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, model.NewInvalidTokenError()
	}

	return claims, nil
}
