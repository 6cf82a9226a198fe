// llmfetchd serves the fetch pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/llmfetch/api"
	"github.com/use-agent/llmfetch/api/handler"
	"github.com/use-agent/llmfetch/config"
	"github.com/use-agent/llmfetch/extract"
	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/render"
	"github.com/use-agent/llmfetch/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("llmfetchd starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Pool.HardMax,
	)

	// ── 3. Initialise renderer (launches browser) ───────────────────
	// A failed launch is not fatal: the server degrades to tier-0 only,
	// classifying script-dependent pages as needs_js_skipped.
	var renderer fetch.Renderer
	var pool handler.PoolStatsSource
	rod, err := render.NewRodRenderer(render.Config{
		Headless:     cfg.Render.Headless,
		NoSandbox:    cfg.Render.NoSandbox,
		BrowserBin:   cfg.Render.BrowserBin,
		PollInterval: cfg.Render.PollInterval,
		Pool: render.PoolConfig{
			MinPages: cfg.Pool.MinPages,
			HardMax:  cfg.Pool.HardMax,
			MaxUses:  cfg.Pool.MaxUses,
			MaxAge:   cfg.Pool.MaxAge,
		},
	})
	if err != nil {
		slog.Warn("browser unavailable, running tier-0 only", "error", err)
	} else {
		renderer = rod
		pool = rod
		defer rod.Close()
	}

	// ── 4. Initialise fetch pipeline ────────────────────────────────
	client := fetch.NewClient(fetch.ClientConfig{
		AllowedHosts: cfg.Fetch.AllowedHosts,
		MaxRedirects: cfg.Fetch.MaxRedirects,
	})
	fetcher := fetch.NewFetcher(client, extract.New(), renderer, fetch.FetcherConfig{
		RenderBudget:         cfg.Render.Budget,
		CacheMaxEntries:      cfg.Cache.MaxEntries,
		CacheTTL:             cfg.Cache.TTL,
		EscalationsPerSecond: cfg.Fetch.EscalationsPerSecond,
		EscalationBurst:      cfg.Fetch.EscalationBurst,
	})

	// ── 4b. Results store for the stats endpoint (optional) ─────────
	var resultStore *store.Store
	if cfg.Server.ResultsDB != "" {
		resultStore, err = store.OpenReadOnly(cfg.Server.ResultsDB)
		if err != nil {
			slog.Warn("results database unavailable, stats endpoint disabled",
				"path", cfg.Server.ResultsDB, "error", err)
			resultStore = nil
		} else {
			defer resultStore.Close()
		}
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(fetcher, pool, resultStore, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// rod.Close() runs via defer — drains the page pool and kills Chrome.
	slog.Info("llmfetchd stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
