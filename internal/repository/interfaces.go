// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/zipdeck/zipdeck/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// 本システムで唯一の永続エンティティであり、エンジンの差し替えは
// このインターフェースの背後に隠蔽される。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。IDとタイムスタンプはストア側で採番する。
	// メールアドレスの一意制約違反はmodel.APIError（EMAIL_TAKEN）として返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateSubscription は指定IDのユーザーのプランを更新し、更新後のユーザーを返す。
	// 該当レコードが存在しない場合はnilを返す。
	UpdateSubscription(ctx context.Context, id string, tier model.SubscriptionTier) (*model.User, error)

	// ListAll は全ユーザーを返す。
	ListAll(ctx context.Context) ([]*model.User, error)
}
