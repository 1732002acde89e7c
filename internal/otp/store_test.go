package otp

import (
	"testing"
	"time"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(0)

	s.Put("+819012345678", "1234")

	code, ok := s.Get("+819012345678")
	if !ok {
		t.Fatal("expected code to be present")
	}
	if code != "1234" {
		t.Errorf("code = %q, want %q", code, "1234")
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore(0)

	if _, ok := s.Get("+819000000000"); ok {
		t.Error("expected unknown phone to be absent")
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	s := NewMemoryStore(0)

	s.Put("+819012345678", "1111")
	s.Put("+819012345678", "2222")

	code, ok := s.Get("+819012345678")
	if !ok {
		t.Fatal("expected code to be present")
	}
	if code != "2222" {
		t.Errorf("code = %q, want latest %q", code, "2222")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(0)

	s.Put("+819012345678", "1234")
	s.Delete("+819012345678")

	if _, ok := s.Get("+819012345678"); ok {
		t.Error("expected code to be deleted")
	}
}

func TestMemoryStore_NoExpiryByDefault(t *testing.T) {
	s := NewMemoryStore(0)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Put("+819012345678", "1234")

	// TTLゼロはどれだけ時間が経っても失効しない
	s.now = func() time.Time { return base.Add(365 * 24 * time.Hour) }
	if _, ok := s.Get("+819012345678"); !ok {
		t.Error("expected code to survive without TTL")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore(5 * time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Put("+819012345678", "1234")

	s.now = func() time.Time { return base.Add(4 * time.Minute) }
	if _, ok := s.Get("+819012345678"); !ok {
		t.Error("expected code to be valid before TTL")
	}

	s.now = func() time.Time { return base.Add(6 * time.Minute) }
	if _, ok := s.Get("+819012345678"); ok {
		t.Error("expected code to expire after TTL")
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0 after lazy expiry", got)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore(5 * time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Put("+819011111111", "1111")
	s.Put("+819022222222", "2222")

	s.now = func() time.Time { return base.Add(10 * time.Minute) }
	s.Put("+819033333333", "3333")

	removed := s.Sweep()
	if removed != 2 {
		t.Errorf("Sweep() = %d, want 2", removed)
	}
	if _, ok := s.Get("+819033333333"); !ok {
		t.Error("expected fresh code to survive sweep")
	}
}
