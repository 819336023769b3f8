package infra

import (
	"net/netip"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "FRONTEND_URL", "UPLOAD_DIR", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_MINUTES", "OPENAI_API_KEY", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port mismatch: got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://youtuber.store" {
		t.Fatalf("AllowedOrigins mismatch: %#v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("rate limit mismatch: %d per %s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.StagingDir() != filepath.Join("uploads", "temp") {
		t.Fatalf("StagingDir mismatch: %q", cfg.StagingDir())
	}
	if cfg.ArtifactDir() != filepath.Join("uploads", "generated") {
		t.Fatalf("ArtifactDir mismatch: %q", cfg.ArtifactDir())
	}
	if cfg.OpenAIAPIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.OpenAIAPIKey)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Fatalf("no proxy should be trusted by default: %v", cfg.TrustedProxies)
	}
}

func TestLoadConfigSplitsFrontendURLs(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://a.example.com/, https://b.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	expected := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.AllowedOrigins) != len(expected) {
		t.Fatalf("AllowedOrigins mismatch: got %#v want %#v", cfg.AllowedOrigins, expected)
	}
	for i, origin := range expected {
		if cfg.AllowedOrigins[i] != origin {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], origin)
		}
	}
}

func TestLoadConfigRejectsNonPositiveRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for zero rate limit")
	}
}

func TestLoadConfigIgnoresMalformedInts(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("RateLimitWindow mismatch: %s", cfg.RateLimitWindow)
	}
}

func TestLoadConfigParsesTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7 ,2001:db8::/32")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}
	if len(cfg.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.TrustedProxies, want)
	}
	for i := range want {
		if cfg.TrustedProxies[i] != want[i] {
			t.Fatalf("TrustedProxies[%d] = %v, want %v", i, cfg.TrustedProxies[i], want[i])
		}
	}
}

func TestLoadConfigRejectsMalformedTrustedProxy(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,loadbalancer")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for malformed proxy entry")
	}
}
