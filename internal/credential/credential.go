// Package credential はパスワードのハッシュ化と検証を提供する。
package credential

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost はbcryptのワークファクタ。全ハッシュで固定。
const hashCost = 5

// Hasher はbcryptによるパスワードハッシュの生成・照合を行う。
type Hasher struct {
	cost int
}

// NewHasher はHasherを生成する。
func NewHasher() *Hasher {
	return &Hasher{cost: hashCost}
}

// Hash は平文パスワードの一方向ハッシュを生成する。
// 平文はここを通過するのみで、どこにも保持されない。
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文パスワードを保存済みハッシュと照合する。
// 不一致は(false, nil)であり、エラーではない。
// ハッシュ形式の破損等のみがエラーとして返る。
func (h *Hasher) Verify(hash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify password: %w", err)
}
