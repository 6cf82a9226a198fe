// llmfetch-bench runs the fetch pipeline over a URL list and records
// per-URL outcomes in a SQLite database. Re-running against the same
// database resumes where the previous run stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/llmfetch/batch"
	"github.com/use-agent/llmfetch/config"
	"github.com/use-agent/llmfetch/extract"
	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/render"
	"github.com/use-agent/llmfetch/store"
	"github.com/use-agent/llmfetch/webhook"
)

func main() {
	urlsFile := flag.String("urls", "", "path to URL list file (required)")
	dbPath := flag.String("db", "results.db", "path to results database")
	parallel := flag.Int("parallel", 100, "concurrent fetches per chunk")
	limit := flag.Int("limit", 0, "max URLs to process (0 = all)")
	timeout := flag.Int("timeout", 10000, "per-URL timeout in ms")
	fast := flag.Bool("fast", false, "skip browser rendering for script-heavy pages")
	webhookURL := flag.String("webhook", "", "URL notified when the run finishes")
	flag.Parse()

	if *urlsFile == "" {
		fmt.Fprintln(os.Stderr, "llmfetch-bench: --urls is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	s, err := store.Open(*dbPath)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	urls, err := batch.LoadWorklist(*urlsFile, s, *limit)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("  URLs to test: %d\n", len(urls))
	if len(urls) == 0 {
		return
	}

	cfg := config.Load()

	var renderer fetch.Renderer
	if !*fast {
		rod, rodErr := render.NewRodRenderer(render.Config{
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
		if rodErr != nil {
			fmt.Fprintf(os.Stderr, "  browser unavailable, running tier-0 only: %v\n", rodErr)
		} else {
			renderer = rod
			defer rod.Close()
		}
	}

	client := fetch.NewClient(fetch.ClientConfig{
		AllowedHosts: cfg.Fetch.AllowedHosts,
		MaxRedirects: cfg.Fetch.MaxRedirects,
	})
	fetcher := fetch.NewFetcher(client, extract.New(), renderer, fetch.FetcherConfig{
		RenderBudget:         cfg.Render.Budget,
		EscalationsPerSecond: cfg.Fetch.EscalationsPerSecond,
		EscalationBurst:      cfg.Fetch.EscalationBurst,
	})

	sched := batch.New(fetcher, s, batch.Config{
		Parallel: *parallel,
		Timeout:  time.Duration(*timeout) * time.Millisecond,
		Fast:     *fast,
		Progress: os.Stdout,
	})

	// Ctrl-C stops at the next chunk boundary; completed chunks are
	// already persisted, so a rerun resumes cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary, runErr := sched.Run(ctx, urls)

	fmt.Println()
	fmt.Println()
	if runErr != nil {
		fmt.Printf("Benchmark interrupted: %v\n", runErr)
	} else {
		fmt.Println("Benchmark complete!")
	}
	fmt.Printf("  Total: %d\n", summary.Completed)
	if summary.Completed > 0 {
		fmt.Printf("  Success: %d (%.1f%%)\n", summary.Success, pct(summary.Success, summary.Completed))
		fmt.Printf("  Blocked: %d (%.1f%%)\n", summary.Blocked, pct(summary.Blocked, summary.Completed))
		fmt.Printf("  Errors: %d (%.1f%%)\n", summary.Errors, pct(summary.Errors, summary.Completed))
		fmt.Printf("  Time: %s\n", batch.FormatDuration(summary.Elapsed.Seconds()))
		fmt.Printf("  Rate: %.1f URLs/sec\n", float64(summary.Completed)/summary.Elapsed.Seconds())
	}

	if *webhookURL != "" {
		eventType := "bench.completed"
		if runErr != nil {
			eventType = "bench.interrupted"
		}
		webhook.DeliverWithRetry(*webhookURL, os.Getenv("LLMFETCH_WEBHOOK_SECRET"), &webhook.Event{
			Type:      eventType,
			RunID:     fmt.Sprintf("%s@%d", *dbPath, time.Now().Unix()),
			Timestamp: time.Now().UnixMilli(),
			Data:      summary,
		})
	}
}

func pct(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "llmfetch-bench: %v\n", err)
	os.Exit(1)
}
