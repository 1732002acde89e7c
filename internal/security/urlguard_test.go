package security

import (
	"strings"
	"testing"
	"time"
)

func TestValidateURL_Allowed(t *testing.T) {
	guard := NewEgressGuard()

	urls := []string{
		"https://hooks.slack.com/services/T000/B000/XXXX",
		"https://example.zendesk.com/api/v2/tickets.json",
		"http://example.com/webhook",
		"https://8.8.8.8/path",
	}
	for _, u := range urls {
		if err := guard.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

func TestValidateURL_Blocked(t *testing.T) {
	guard := NewEgressGuard()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty", "", "empty URL"},
		{"ftp scheme", "ftp://example.com/file", "disallowed scheme"},
		{"file scheme", "file:///etc/passwd", "disallowed scheme"},
		{"no host", "https:///path", "empty host"},
		{"loopback", "http://127.0.0.1/admin", "blocked IP"},
		{"private 10", "http://10.0.0.5/internal", "blocked IP"},
		{"private 172", "http://172.16.0.1/internal", "blocked IP"},
		{"private 192", "http://192.168.1.1/router", "blocked IP"},
		{"metadata", "http://169.254.169.254/latest/meta-data/", "blocked IP"},
		{"ipv6 loopback", "http://[::1]/admin", "blocked IP"},
		{"localhost", "http://localhost:8080/admin", "blocked host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if err == nil {
				t.Fatalf("ValidateURL(%q) = nil, want error", tt.url)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.want)
			}
		})
	}
}

func TestNewSafeClient(t *testing.T) {
	guard := NewEgressGuard()

	client := guard.NewSafeClient(10 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient() = nil")
	}
	if client.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", client.Timeout)
	}
}
