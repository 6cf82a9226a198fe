package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/models"
	"github.com/use-agent/llmfetch/store"
)

const defaultParallel = 100

// Config controls a batch run.
type Config struct {
	// Parallel is the chunk size: how many URLs are in flight at once.
	// Zero means 100.
	Parallel int

	// Timeout is the per-URL fetch deadline.
	Timeout time.Duration

	// Fast disables tier-1 escalation for the whole run.
	Fast bool

	// Progress, when non-nil, receives a single-line progress display
	// updated after every chunk.
	Progress io.Writer
}

// Summary totals one batch run.
type Summary struct {
	Completed int
	Success   int
	Blocked   int
	Errors    int
	Elapsed   time.Duration
}

// Scheduler drives the fetcher over a worklist in fixed-size chunks. All
// URLs in a chunk run concurrently; the next chunk starts only after the
// previous one fully settles and persists. The barrier wastes some
// parallelism on stragglers but keeps memory flat and makes every chunk
// boundary a durable resume point.
type Scheduler struct {
	fetcher *fetch.Fetcher
	store   *store.Store
	cfg     Config
}

// New creates a Scheduler writing results to s.
func New(fetcher *fetch.Fetcher, s *store.Store, cfg Config) *Scheduler {
	if cfg.Parallel <= 0 {
		cfg.Parallel = defaultParallel
	}
	return &Scheduler{fetcher: fetcher, store: s, cfg: cfg}
}

// Run processes urls and returns totals. A canceled ctx stops the run at
// the next chunk boundary; everything already settled stays persisted, so
// the partial summary is still accurate.
func (sc *Scheduler) Run(ctx context.Context, urls []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	for i := 0; i < len(urls); i += sc.cfg.Parallel {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		end := i + sc.cfg.Parallel
		if end > len(urls) {
			end = len(urls)
		}
		chunk := urls[i:end]

		results := make([]models.FetchResult, len(chunk))
		var wg sync.WaitGroup
		for j, url := range chunk {
			wg.Add(1)
			go func(j int, url string) {
				defer wg.Done()
				results[j] = sc.fetcher.Do(ctx, url, fetch.Options{
					Timeout: sc.cfg.Timeout,
					Fast:    sc.cfg.Fast,
					NoCache: true,
				})
			}(j, url)
		}
		wg.Wait()

		// Persist from the scheduling goroutine so the store sees one
		// writer.
		for _, result := range results {
			if err := sc.store.Upsert(result); err != nil {
				slog.Warn("batch: persist failed", "url", result.URL, "error", err)
			}
			summary.Completed++
			switch result.Outcome {
			case models.OutcomeSuccess:
				summary.Success++
			case models.OutcomeBlocked:
				summary.Blocked++
			default:
				summary.Errors++
			}
		}

		sc.writeProgress(summary, len(urls), start)
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

// writeProgress renders the in-place progress line after a chunk settles.
func (sc *Scheduler) writeProgress(summary *Summary, total int, start time.Time) {
	if sc.cfg.Progress == nil {
		return
	}

	elapsed := time.Since(start).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(summary.Completed) / elapsed
	}
	var eta float64
	if rate > 0 {
		eta = float64(total-summary.Completed) / rate
	}
	pct := float64(summary.Completed) / float64(total) * 100

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	heapMB := m.HeapAlloc / 1024 / 1024

	fmt.Fprintf(sc.cfg.Progress,
		"\r  Progress: %d/%d (%.1f%%) | %.1f URLs/sec | ETA: %s | Mem: %dMB | S:%d B:%d E:%d",
		summary.Completed, total, pct, rate, FormatDuration(eta), heapMB,
		summary.Success, summary.Blocked, summary.Errors)
}

// FormatDuration renders seconds in the most readable unit.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.0fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1fm", seconds/60)
	default:
		return fmt.Sprintf("%.1fh", seconds/3600)
	}
}
