package fetch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/llmfetch/detect"
	"github.com/use-agent/llmfetch/extract"
	"github.com/use-agent/llmfetch/models"
	"github.com/use-agent/llmfetch/simhash"
)

// minContentLen is the extracted-content length above which an attempt
// counts as a success.
const minContentLen = 100

// defaultTimeout bounds a whole attempt when the caller does not say.
const defaultTimeout = 10 * time.Second

// Renderer is the script-execution collaborator for tier-1 escalation. It
// loads HTML, lets scripts run within the budget, and returns the
// post-execution HTML. Implementations fall back to returning the input
// HTML on internal failure, so "unchanged output" means "escalation did
// not help".
type Renderer interface {
	Render(ctx context.Context, html, url string, budget time.Duration) (string, error)
}

// Options are the per-request knobs recognized by Do.
type Options struct {
	// Timeout is the transport deadline for the attempt. Zero means the
	// fetcher default.
	Timeout time.Duration

	// NoCache bypasses the in-memory result cache.
	NoCache bool

	// Fast disables tier-1 escalation entirely; pages that need
	// JavaScript come back as needs_js_skipped.
	Fast bool

	// Selector, when set, narrows the fetched HTML to the elements
	// matching this CSS selector before extraction. No match leaves the
	// HTML untouched.
	Selector string

	// Debug logs per-attempt fetch details at info level.
	Debug bool
}

// FetcherConfig controls Fetcher construction.
type FetcherConfig struct {
	// RenderBudget is the tier-1 rendering deadline. Zero means 3s.
	RenderBudget time.Duration

	// CacheMaxEntries / CacheTTL size the result cache.
	CacheMaxEntries int
	CacheTTL        time.Duration

	// EscalationsPerSecond bounds tier-1 attempts across all requests.
	// Zero or negative means unlimited. When the budget is exhausted the
	// attempt is classified needs_js_skipped rather than queued — under
	// batch load, waiting on the renderer would stall whole chunks.
	EscalationsPerSecond float64
	EscalationBurst      int
}

// Fetcher runs the per-URL fetch state machine. It is safe for concurrent
// use; every failure is recovered into a classified FetchResult so one bad
// URL can never abort a batch.
type Fetcher struct {
	client     *Client
	extractor  *extract.Extractor
	renderer   Renderer
	cache      *resultCache
	escalation *rate.Limiter

	renderBudget time.Duration
}

// NewFetcher wires the pipeline. renderer may be nil, in which case pages
// needing JavaScript are classified needs_js_skipped (same as fast mode).
func NewFetcher(client *Client, extractor *extract.Extractor, renderer Renderer, cfg FetcherConfig) *Fetcher {
	budget := cfg.RenderBudget
	if budget <= 0 {
		budget = 3 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.EscalationsPerSecond > 0 {
		burst := cfg.EscalationBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.EscalationsPerSecond), burst)
	}

	return &Fetcher{
		client:       client,
		extractor:    extractor,
		renderer:     renderer,
		cache:        newResultCache(cfg.CacheMaxEntries, cfg.CacheTTL),
		escalation:   limiter,
		renderBudget: budget,
	}
}

// NormalizeURL defaults the scheme to https when missing.
func NormalizeURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}

// Do fetches and classifies a single URL. It never returns an error: every
// transport, extraction, and rendering failure maps into a terminal
// FetchResult with outcome and reason from the closed vocabulary.
func (f *Fetcher) Do(ctx context.Context, rawURL string, opts Options) models.FetchResult {
	start := time.Now()
	targetURL := NormalizeURL(rawURL)

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	if !opts.NoCache {
		if cached, hit := f.cache.get(targetURL); hit {
			cached.Cached = true
			return cached
		}
	}

	// Tier 0: plain fetch with a hard deadline.
	fetchCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	resp, err := f.client.Get(fetchCtx, targetURL)
	if err != nil {
		return f.terminal(models.FetchResult{
			URL:     targetURL,
			Tier:    models.TierPlain,
			Outcome: models.OutcomeError,
			Reason:  classifyTransportError(err),
		}, start)
	}

	if opts.Debug {
		slog.Info("fetched", "url", targetURL, "status", resp.StatusCode,
			"latency_ms", time.Since(start).Milliseconds())
	}

	rawHTML := resp.Body
	if opts.Selector != "" {
		if narrowed, serr := extract.ApplySelector(rawHTML, opts.Selector); serr == nil {
			rawHTML = narrowed
		}
	}

	// The response can already tell us escalation is pointless.
	if verdict := detect.AnalyzeResponse(resp.StatusCode, resp.Header, rawHTML); verdict != nil {
		return f.terminal(models.FetchResult{
			URL:     targetURL,
			Tier:    models.TierPlain,
			Outcome: models.OutcomeBlocked,
			Reason:  verdict.Reason,
		}, start)
	}

	doc, extracted := f.extractor.Extract(rawHTML, targetURL)
	if extracted && len(doc.Content) > minContentLen {
		return f.success(targetURL, models.TierPlain, doc, start, opts)
	}

	// A block page can slip past response-level rules yet yield no
	// extractable content.
	if verdict := detect.DetectBlockPage(rawHTML); verdict != nil {
		return f.terminal(models.FetchResult{
			URL:     targetURL,
			Tier:    models.TierPlain,
			Outcome: models.OutcomeBlocked,
			Reason:  verdict.Reason,
		}, start)
	}

	extractedLen := 0
	if extracted {
		extractedLen = len(doc.Content)
	}
	if !detect.NeedsJavaScript(rawHTML, extractedLen) {
		return f.terminal(models.FetchResult{
			URL:     targetURL,
			Tier:    models.TierPlain,
			Outcome: models.OutcomeEmpty,
			Reason:  models.ReasonNoContent,
		}, start)
	}

	if opts.Fast || f.renderer == nil || !f.allowEscalation() {
		return f.terminal(models.FetchResult{
			URL:     targetURL,
			Tier:    models.TierPlain,
			Outcome: models.OutcomeNeedsJSSkipped,
			Reason:  models.ReasonSPASkipped,
		}, start)
	}

	// Tier 1: script execution under its own budget.
	if opts.Debug {
		slog.Info("escalating to renderer", "url", targetURL)
	}

	renderCtx, renderCancel := context.WithTimeout(ctx, f.renderBudget)
	defer renderCancel()

	rendered, err := f.renderer.Render(renderCtx, rawHTML, targetURL, f.renderBudget)

	// The renderer contract: byte-identical output (or an error) means the
	// render itself failed. Anything else gets re-extracted, even when only
	// text changed — hydration often fills existing containers without
	// adding elements.
	if err != nil || rendered == "" || rendered == rawHTML {
		return f.terminal(models.FetchResult{
			URL:     targetURL,
			Tier:    models.TierRendered,
			Outcome: models.OutcomeBlocked,
			Reason:  models.ReasonSPAFailed,
		}, start)
	}

	if doc, ok := f.extractor.Extract(rendered, targetURL); ok && len(doc.Content) > minContentLen {
		return f.success(targetURL, models.TierRendered, doc, start, opts)
	}

	if opts.Debug {
		slog.Info("rendered but extraction still failed", "url", targetURL,
			"dom_distance", simhash.Distance(
				simhash.FingerprintDOM(rawHTML), simhash.FingerprintDOM(rendered)))
	}

	return f.terminal(models.FetchResult{
		URL:     targetURL,
		Tier:    models.TierRendered,
		Outcome: models.OutcomeBlocked,
		Reason:  models.ReasonSPAFailed,
	}, start)
}

// allowEscalation consults the escalation rate limiter without blocking.
func (f *Fetcher) allowEscalation() bool {
	if f.escalation == nil {
		return true
	}
	return f.escalation.Allow()
}

// success builds a terminal success result and caches it.
func (f *Fetcher) success(url string, tier int, doc *extract.Document, start time.Time, opts Options) models.FetchResult {
	result := f.terminal(models.FetchResult{
		URL:         url,
		Tier:        tier,
		Outcome:     models.OutcomeSuccess,
		Content:     doc.Content,
		Title:       doc.Title,
		Author:      doc.Author,
		Published:   doc.Published,
		WordCount:   doc.WordCount,
		TokenCount:  extract.EstimateTokens(doc.WordCount),
		Fingerprint: simhash.Fingerprint(doc.Content),
	}, start)

	if !opts.NoCache {
		f.cache.set(url, result)
	}
	return result
}

// terminal stamps latency and creation time. Latency is cumulative wall
// clock from the start of tier 0, so escalated attempts charge both tiers.
func (f *Fetcher) terminal(result models.FetchResult, start time.Time) models.FetchResult {
	result.LatencyMs = time.Since(start).Milliseconds()
	result.Timestamp = time.Now()
	return result
}
