package util

import (
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestClientIP(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8", "192.168.1.10", "2001:db8::/32"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xrip       string
		trusted    *TrustedProxies
		want       string
	}{
		{
			name:       "nil allowlist ignores forwarding headers",
			remoteAddr: "198.51.100.10:1234",
			xff:        "203.0.113.5",
			xrip:       "203.0.113.6",
			want:       "198.51.100.10",
		},
		{
			name:       "untrusted peer ignores forwarding headers",
			remoteAddr: "192.168.1.11:80",
			xff:        "203.0.113.5",
			trusted:    trusted,
			want:       "192.168.1.11",
		},
		{
			name:       "trusted peer uses x-forwarded-for",
			remoteAddr: "10.0.0.20:1234",
			xff:        "203.0.113.5",
			trusted:    trusted,
			want:       "203.0.113.5",
		},
		{
			name:       "bare ip entry is trusted",
			remoteAddr: "192.168.1.10:8080",
			xff:        "203.0.113.8",
			trusted:    trusted,
			want:       "203.0.113.8",
		},
		{
			name:       "ipv4-mapped trusted peer",
			remoteAddr: "[::ffff:10.0.0.20]:1234",
			xff:        "203.0.113.5",
			trusted:    trusted,
			want:       "203.0.113.5",
		},
		{
			name:       "ipv4-mapped untrusted peer is reported unmapped",
			remoteAddr: "[::ffff:198.51.100.10]:1234",
			xff:        "203.0.113.5",
			trusted:    trusted,
			want:       "198.51.100.10",
		},
		{
			name:       "ipv6 trusted peer skips trusted hops",
			remoteAddr: "[2001:db8::1]:443",
			xff:        "203.0.113.9, 2001:db8::5",
			trusted:    trusted,
			want:       "203.0.113.9",
		},
		{
			name:       "mapped hop in chain counts as trusted",
			remoteAddr: "10.0.0.20:1234",
			xff:        "203.0.113.5, ::ffff:10.0.0.10",
			trusted:    trusted,
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip when x-forwarded-for is garbage",
			remoteAddr: "10.0.0.20:1234",
			xff:        "invalid",
			xrip:       "203.0.113.7",
			trusted:    trusted,
			want:       "203.0.113.7",
		},
		{
			name:       "fully trusted chain yields leftmost hop",
			remoteAddr: "10.0.0.20:1234",
			xff:        "10.0.0.5, 10.0.0.10",
			trusted:    trusted,
			want:       "10.0.0.5",
		},
		{
			name:       "unparsable peer is returned as is",
			remoteAddr: " pipe ",
			xff:        "203.0.113.5",
			trusted:    trusted,
			want:       "pipe",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://files.local/connect", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				req.Header.Set("X-Real-IP", tc.xrip)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewTrustedProxies(t *testing.T) {
	got, err := NewTrustedProxies([]string{" ", ""})
	if err != nil || got != nil {
		t.Fatalf("blank entries should trust nobody, got %v, %v", got, err)
	}
	if _, err := NewTrustedProxies([]string{"bad-cidr"}); err == nil {
		t.Fatalf("expected parse error for invalid entry")
	}
	if _, err := NewTrustedProxies([]string{"10.0.0.0/33"}); err == nil {
		t.Fatalf("expected parse error for invalid prefix length")
	}

	trusted, err := NewTrustedProxies([]string{"10.1.2.3/8", "::ffff:172.16.0.1", "fd00::/8"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}
	for addr, want := range map[string]bool{
		"10.200.0.1":        true,
		"172.16.0.1":        true,
		"::ffff:172.16.0.1": true,
		"172.16.0.2":        false,
		"fd12::1":           true,
		"fe80::1":           false,
	} {
		if got := trusted.Contains(netip.MustParseAddr(addr)); got != want {
			t.Fatalf("Contains(%s) = %v, want %v", addr, got, want)
		}
	}
	if trusted.Contains(netip.Addr{}) {
		t.Fatalf("zero addr must not be trusted")
	}
}
