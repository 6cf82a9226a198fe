package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxRedirects != 5 {
		t.Errorf("MaxRedirects = %d, want 5", cfg.Fetch.MaxRedirects)
	}
	if cfg.Render.Budget != 3*time.Second {
		t.Errorf("Budget = %v, want 3s", cfg.Render.Budget)
	}
	if cfg.Fetch.EscalationsPerSecond != 0 {
		t.Errorf("EscalationsPerSecond = %v, want 0 (unlimited)", cfg.Fetch.EscalationsPerSecond)
	}
	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled = true, want false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LLMFETCH_PORT", "9090")
	t.Setenv("LLMFETCH_TIMEOUT", "30s")
	t.Setenv("LLMFETCH_ALLOWED_HOSTS", "example.com, example.org ,")
	t.Setenv("LLMFETCH_ESCALATION_RPS", "2.5")
	t.Setenv("LLMFETCH_AUTH_ENABLED", "true")
	t.Setenv("LLMFETCH_RESULTS_DB", "/tmp/results.db")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Fetch.Timeout)
	}
	want := []string{"example.com", "example.org"}
	if len(cfg.Fetch.AllowedHosts) != len(want) {
		t.Fatalf("AllowedHosts = %v, want %v", cfg.Fetch.AllowedHosts, want)
	}
	for i, h := range want {
		if cfg.Fetch.AllowedHosts[i] != h {
			t.Errorf("AllowedHosts[%d] = %q, want %q", i, cfg.Fetch.AllowedHosts[i], h)
		}
	}
	if cfg.Fetch.EscalationsPerSecond != 2.5 {
		t.Errorf("EscalationsPerSecond = %v, want 2.5", cfg.Fetch.EscalationsPerSecond)
	}
	if !cfg.Auth.Enabled {
		t.Error("Auth.Enabled = false, want true")
	}
	if cfg.Server.ResultsDB != "/tmp/results.db" {
		t.Errorf("ResultsDB = %q", cfg.Server.ResultsDB)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LLMFETCH_PORT", "not-a-number")
	t.Setenv("LLMFETCH_TIMEOUT", "soon")
	t.Setenv("LLMFETCH_AUTH_ENABLED", "maybe")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want default 10s", cfg.Fetch.Timeout)
	}
	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled = true, want default false")
	}
}
