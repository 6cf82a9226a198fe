package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Render    RenderConfig
	Pool      PoolConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// ResultsDB, when set, is a results database the server exposes
	// through the stats endpoint.
	ResultsDB string
}

// FetchConfig controls the tier-0 transport and escalation behavior.
type FetchConfig struct {
	// Timeout is the default per-request deadline.
	Timeout time.Duration // default: 10s

	// MaxRedirects bounds redirect following.
	MaxRedirects int // default: 5

	// AllowedHosts, when non-empty, restricts outbound fetches to the
	// listed hostnames. Empty means all hosts are allowed.
	AllowedHosts []string

	// EscalationsPerSecond bounds how often tier-1 rendering may be
	// attempted. Zero or negative means unlimited.
	EscalationsPerSecond float64 // default: 0 (unlimited)

	// EscalationBurst is the token-bucket burst for escalations.
	EscalationBurst int // default: 1
}

// RenderConfig controls the Rod browser renderer.
type RenderConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Budget is the default rendering budget per escalation.
	Budget time.Duration // default: 3s

	// PollInterval is how often the renderer checks whether body text
	// has appeared.
	PollInterval time.Duration // default: 100ms
}

// PoolConfig controls the recyclable renderer page pool.
type PoolConfig struct {
	// MinPages is the minimum number of pages kept in the pool.
	MinPages int // default: 2

	// HardMax is the absolute maximum number of pages.
	HardMax int // default: 10

	// MaxUses retires a page after this many rendering attempts.
	MaxUses int // default: 50

	// MaxAge retires a page after this lifetime.
	MaxAge time.Duration // default: 50m
}

// CacheConfig controls the in-memory fetch result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 1000

	// TTL is how long a cached result stays valid.
	TTL time.Duration // default: 1h
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key API rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      envOr("LLMFETCH_HOST", "0.0.0.0"),
			Port:      envIntOr("LLMFETCH_PORT", 8080),
			Mode:      envOr("LLMFETCH_MODE", "release"),
			ResultsDB: os.Getenv("LLMFETCH_RESULTS_DB"),
		},
		Fetch: FetchConfig{
			Timeout:              envDurationOr("LLMFETCH_TIMEOUT", 10*time.Second),
			MaxRedirects:         envIntOr("LLMFETCH_MAX_REDIRECTS", 5),
			AllowedHosts:         envSliceOr("LLMFETCH_ALLOWED_HOSTS", nil),
			EscalationsPerSecond: envFloatOr("LLMFETCH_ESCALATION_RPS", 0),
			EscalationBurst:      envIntOr("LLMFETCH_ESCALATION_BURST", 1),
		},
		Render: RenderConfig{
			Headless:     envBoolOr("LLMFETCH_HEADLESS", true),
			NoSandbox:    envBoolOr("LLMFETCH_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("LLMFETCH_BROWSER_BIN"),
			Budget:       envDurationOr("LLMFETCH_RENDER_BUDGET", 3*time.Second),
			PollInterval: envDurationOr("LLMFETCH_RENDER_POLL", 100*time.Millisecond),
		},
		Pool: PoolConfig{
			MinPages: envIntOr("LLMFETCH_MIN_PAGES", 2),
			HardMax:  envIntOr("LLMFETCH_HARD_MAX_PAGES", 10),
			MaxUses:  envIntOr("LLMFETCH_PAGE_MAX_USES", 50),
			MaxAge:   envDurationOr("LLMFETCH_PAGE_MAX_AGE", 50*time.Minute),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LLMFETCH_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("LLMFETCH_CACHE_TTL", time.Hour),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("LLMFETCH_AUTH_ENABLED", false),
			APIKeys: envSliceOr("LLMFETCH_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("LLMFETCH_RATE_RPS", 5.0),
			Burst:             envIntOr("LLMFETCH_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("LLMFETCH_LOG_LEVEL", "info"),
			Format: envOr("LLMFETCH_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
