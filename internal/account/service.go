// Package account はユーザーアカウントのドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zipdeck/zipdeck/internal/model"
	"github.com/zipdeck/zipdeck/internal/repository"
)

// PasswordHasher はパスワードのハッシュ化と検証のインターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// TokenIssuer はセッショントークンの発行インターフェース。
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// SignupInput はサインアップの入力。
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Mobile   string
	City     string
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	User  *model.User
	Token string
}

// Service はアカウント管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, issuer TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
	}
}

// Signup は新規ユーザーを登録する。
// メールアドレスの重複は事前照会とDBの一意制約の両方で防ぐ。
func (s *Service) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	if err := validateSignup(input); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの照会に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		Mobile:       input.Mobile,
		City:         input.City,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました", slog.String("user_id", user.ID))
	return user, nil
}

// Login はメールアドレスとパスワードを検証しセッショントークンを発行する。
// 未登録メールはUSER_NOT_FOUND、パスワード不一致はINVALID_CREDENTIALS。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("ユーザーの照会に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("パスワードの検証に失敗しました: %w", err)
	}
	if !ok {
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("ログインしました", slog.String("user_id", user.ID))
	return &LoginResult{User: user, Token: token}, nil
}

// Profile はユーザーIDからプロフィールを取得する。
// 見つからない場合はUSER_NOT_FOUND。
func (s *Service) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの照会に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateSubscription はユーザーの購読プランを更新する。
func (s *Service) UpdateSubscription(ctx context.Context, userID, tier string) (*model.User, error) {
	parsed, ok := model.ParseSubscriptionTier(tier)
	if !ok {
		return nil, model.NewValidationError("unknown subscription tier")
	}

	user, err := s.userRepo.UpdateSubscription(ctx, userID, parsed)
	if err != nil {
		return nil, fmt.Errorf("購読プランの更新に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	slog.Info("購読プランを更新しました",
		slog.String("user_id", userID),
		slog.String("subscription", string(parsed)),
	)
	return user, nil
}

// ListUsers は全ユーザーを返す。
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

func validateSignup(input SignupInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return model.NewValidationError("name is required")
	case strings.TrimSpace(input.Email) == "":
		return model.NewValidationError("email is required")
	case input.Password == "":
		return model.NewValidationError("password is required")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
