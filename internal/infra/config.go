package infra

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	LogLevel          string
	Port              string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIImageModel  string
	AllowedOrigins    []string
	UploadDir         string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	AssetFetchTimeout time.Duration
	ShutdownGrace     time.Duration
	// TrustedProxies lists the peers whose forwarding headers name the
	// client. Empty means the socket address is the client.
	TrustedProxies []netip.Prefix
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Port:              getEnv("PORT", "3000"),
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel:  getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		AllowedOrigins:    splitList(getEnv("FRONTEND_URL", "https://youtuber.store")),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:   time.Minute * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		AssetFetchTimeout: time.Second * time.Duration(getEnvInt("ASSET_FETCH_TIMEOUT_SECONDS", 120)),
		ShutdownGrace:     time.Second * time.Duration(getEnvInt("SHUTDOWN_GRACE_SECONDS", 30)),
	}

	proxies, err := parsePrefixes(splitList(os.Getenv("TRUSTED_PROXIES")))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_MINUTES must be positive")
	}

	return cfg, nil
}

// StagingDir is where reference uploads live for the duration of one request.
func (c *Config) StagingDir() string {
	return filepath.Join(c.UploadDir, "temp")
}

// ArtifactDir holds generated thumbnails until the retention sweep removes them.
func (c *Config) ArtifactDir() string {
	return filepath.Join(c.UploadDir, "generated")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}

// parsePrefixes accepts CIDR blocks and bare addresses.
func parsePrefixes(items []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range items {
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid address or CIDR %q", item)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
