// Package model はドメインモデルを定義する。
package model

import "time"

// SubscriptionTier はユーザーの課金プランを表す。
type SubscriptionTier string

const (
	// TierBasic は無料プラン。新規ユーザーのデフォルト。
	TierBasic SubscriptionTier = "basic"
	// TierMedium は中間プラン。
	TierMedium SubscriptionTier = "medium"
	// TierPremium は最上位プラン。
	TierPremium SubscriptionTier = "premium"
)

// ParseSubscriptionTier は文字列をSubscriptionTierに変換する。
// 未知の値の場合はfalseを返す。
func ParseSubscriptionTier(s string) (SubscriptionTier, bool) {
	switch SubscriptionTier(s) {
	case TierBasic, TierMedium, TierPremium:
		return SubscriptionTier(s), true
	default:
		return "", false
	}
}

// User はサービス利用ユーザーを表す。
// PasswordHashは一方向ハッシュのみを保持し、平文パスワードは
// どの層でも永続化しない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Mobile       string
	City         string
	Subscription SubscriptionTier
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
