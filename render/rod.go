// Package render runs fetched HTML through a real browser so that
// script-driven pages can hydrate before extraction. Pages come from a
// health-scored pool and are recycled across renders.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// minBodyTextLen is the visible body text length at which a page is
// considered hydrated and polling stops.
const minBodyTextLen = 100

const defaultPollInterval = 100 * time.Millisecond

// Config controls browser launch and render behavior.
type Config struct {
	Headless   bool
	NoSandbox  bool
	BrowserBin string

	// PollInterval is how often body text is sampled while waiting for
	// scripts to populate the page. Zero means 100ms.
	PollInterval time.Duration

	Pool PoolConfig
}

// RodRenderer renders HTML in a headless Chromium via the DevTools
// protocol. It owns the browser process and a pool of recyclable pages.
type RodRenderer struct {
	browser      *rod.Browser
	pool         *Pool
	pollInterval time.Duration
}

// NewRodRenderer launches a browser and pre-warms the page pool.
func NewRodRenderer(cfg Config) (*RodRenderer, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("render: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("render: connect browser: %w", err)
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	r := &RodRenderer{
		browser:      browser,
		pollInterval: pollInterval,
	}
	r.pool = newPool(cfg.Pool, r.newPage, r.closePage)
	return r, nil
}

// newPage creates a blank page with stealth JS installed. The injection
// must happen before any content loads to mask navigator.webdriver and
// friends on every subsequent document.
func (r *RodRenderer) newPage() (*rod.Page, error) {
	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("render: stealth injection failed, proceeding without it", "error", err)
	}
	return page, nil
}

func (r *RodRenderer) closePage(page *rod.Page) {
	_ = page.Close()
}

// Render loads html into a pooled page, lets its scripts run until the
// visible body text crosses the hydration threshold or the budget runs
// out, and returns the post-execution HTML. On any internal failure the
// input html is returned so the caller's pipeline degrades instead of
// erroring.
func (r *RodRenderer) Render(ctx context.Context, html, pageURL string, budget time.Duration) (string, error) {
	h, err := r.pool.get(ctx)
	if err != nil {
		return html, fmt.Errorf("render: acquire page: %w", err)
	}

	success := false
	defer func() {
		// Reset with the original page reference so cleanup works even
		// after the request context expires.
		if navErr := h.page.Navigate("about:blank"); navErr != nil {
			slog.Warn("render: failed to reset page", "error", navErr)
		}
		r.pool.put(h, success)
	}()

	p := h.page.Context(ctx)
	r.setReferer(p, pageURL)

	if err := p.SetDocumentContent(html); err != nil {
		return html, fmt.Errorf("render: set content: %w", err)
	}

	r.waitForHydration(ctx, p, budget)

	rendered, err := p.HTML()
	if err != nil {
		return html, fmt.Errorf("render: read html: %w", err)
	}

	success = true
	return rendered, nil
}

// waitForHydration polls visible body text until it crosses the threshold
// or the budget elapses. Returning early on failure is pointless here; the
// caller re-extracts whatever HTML the page ends up with.
func (r *RodRenderer) waitForHydration(ctx context.Context, p *rod.Page, budget time.Duration) {
	deadline := time.Now().Add(budget)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		res, err := p.Eval(`() => document.body ? document.body.innerText.length : 0`)
		if err == nil && res.Value.Int() > minBodyTextLen {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// setReferer installs a plausible search referer for the target host.
// Best-effort; a failed CDP call just means the header is absent.
func (r *RodRenderer) setReferer(p *rod.Page, pageURL string) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return
	}
	headers := proto.NetworkHeaders{
		"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(p)
}

// PoolSize returns the number of live pooled pages.
func (r *RodRenderer) PoolSize() int { return r.pool.Size() }

// ActivePages returns the number of pages currently rendering.
func (r *RodRenderer) ActivePages() int { return r.pool.Active() }

// Close shuts down the pool and the browser process.
func (r *RodRenderer) Close() {
	r.pool.stop()
	if err := r.browser.Close(); err != nil {
		slog.Warn("render: browser close failed", "error", err)
	}
}
