// Package otp はワンタイムパスワードの発行・保管・検証を提供する。
package otp

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store はOTPコードの保管インターフェース。
// 電話番号ごとに高々1件の有効なコードを保持する。
// プロセス内メモリ実装が既定だが、永続バックエンドへの差し替えは
// このインターフェースの背後で行う。
type Store interface {
	// Put は電話番号に対するコードを保存する。既存のコードは上書きされる。
	Put(phone, code string)
	// Get は電話番号に対する有効なコードを返す。未発行・期限切れの場合はfalse。
	Get(phone string) (string, bool)
	// Delete は電話番号に対するコードを削除する。
	Delete(phone string)
}

// entry は保管中のOTPコード1件を表す。
type entry struct {
	code      string
	createdAt time.Time
}

// MemoryStore はミューテックスで保護されたプロセス内OTPストア。
// TTLは注入された有効期限ポリシーであり、0の場合は無期限
// （検証または上書きまで有効）となる。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
// ttl == 0 の場合、コードは検証または上書きまで無期限に有効。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put は電話番号に対するコードを保存する。最新のコードが常に優先される。
func (s *MemoryStore) Put(phone, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = entry{code: code, createdAt: s.now()}
}

// Get は電話番号に対する有効なコードを返す。
// TTLが設定されている場合、期限切れのコードはここで遅延削除される。
func (s *MemoryStore) Get(phone string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[phone]
	if !ok {
		return "", false
	}
	if s.expired(e) {
		delete(s.entries, phone)
		return "", false
	}
	return e.code, true
}

// Delete は電話番号に対するコードを削除する。
func (s *MemoryStore) Delete(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
}

// Len は保管中のコード数を返す。テストおよびメトリクス用。
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep は期限切れエントリをまとめて削除し、削除件数を返す。
// TTLが0の場合は何もしない。
func (s *MemoryStore) Sweep() int {
	if s.ttl == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for phone, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, phone)
			removed++
		}
	}
	return removed
}

// StartSweeper は定期的にSweepを実行するバックグラウンドループを開始する。
// コンテキストのキャンセルで停止する。TTLが0の場合は即座に返る。
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				slog.Info("期限切れOTPコードを削除しました",
					slog.Int("removed", removed),
				)
			}
		}
	}
}

// expired はエントリがTTLを超過しているかを判定する。呼び出し側でロックを保持すること。
func (s *MemoryStore) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.createdAt) > s.ttl
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
