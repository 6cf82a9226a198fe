package render

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
)

// PoolConfig holds page pool sizing and retirement limits.
type PoolConfig struct {
	MinPages int
	HardMax  int

	// MaxUses retires a page after this many checkouts regardless of
	// health. MaxAge retires it by wall-clock age. Both guard against
	// slow DOM/listener leaks that per-use cleanup cannot reach.
	MaxUses int
	MaxAge  time.Duration
}

// pageFactory creates a fresh page ready for rendering.
type pageFactory func() (*rod.Page, error)

// pageDestroyer closes a page's underlying target.
type pageDestroyer func(*rod.Page)

// handle wraps a pooled page with health tracking metadata.
type handle struct {
	page *rod.Page

	mu       sync.Mutex
	errScore float64
	useCount int
	created  time.Time
}

func newHandle(page *rod.Page) *handle {
	return &handle{page: page, created: time.Now()}
}

// recordSuccess decreases the error score (min 0).
func (h *handle) recordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore = math.Max(0, h.errScore-0.5)
}

// recordFailure increases the error score.
func (h *handle) recordFailure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.useCount++
	h.errScore += 1.0
}

// shouldRetire reports whether the page has aged or degraded past its
// limits. A page that fails repeatedly without intervening successes
// crosses the score threshold quickly; occasional failures are forgiven.
func (h *handle) shouldRetire(cfg PoolConfig) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.errScore >= 3.0 {
		return true
	}
	if cfg.MaxUses > 0 && h.useCount >= cfg.MaxUses {
		return true
	}
	if cfg.MaxAge > 0 && time.Since(h.created) >= cfg.MaxAge {
		return true
	}
	return false
}

// Pool manages a bounded set of recyclable renderer pages. Pages are
// health-scored on return and retired (closed and replaced) when they
// degrade, so one wedged tab cannot poison subsequent renders.
type Pool struct {
	cfg       PoolConfig
	factory   pageFactory
	destroyer pageDestroyer

	idle    chan *handle
	mu      sync.Mutex
	live    int
	active  atomic.Int32
	stopped chan struct{}
}

// newPool creates a pool and pre-creates MinPages pages.
func newPool(cfg PoolConfig, factory pageFactory, destroyer pageDestroyer) *Pool {
	if cfg.MinPages < 1 {
		cfg.MinPages = 1
	}
	if cfg.HardMax < cfg.MinPages {
		cfg.HardMax = cfg.MinPages
	}

	p := &Pool{
		cfg:       cfg,
		factory:   factory,
		destroyer: destroyer,
		idle:      make(chan *handle, cfg.HardMax),
		stopped:   make(chan struct{}),
	}

	for i := 0; i < cfg.MinPages; i++ {
		h, err := p.create()
		if err != nil {
			slog.Warn("render pool: failed to pre-create page", "error", err)
			continue
		}
		p.idle <- h
	}

	return p
}

// get acquires a page handle, creating one if the pool is under its hard
// max, otherwise blocking until a page is returned or ctx is done.
func (p *Pool) get(ctx context.Context) (*handle, error) {
	select {
	case h := <-p.idle:
		p.active.Add(1)
		return h, nil
	default:
	}

	p.mu.Lock()
	if p.live < p.cfg.HardMax {
		h, err := p.createLocked()
		p.mu.Unlock()
		if err == nil {
			p.active.Add(1)
			return h, nil
		}
		// Creation failed; fall through to waiting for a returned page.
	} else {
		p.mu.Unlock()
	}

	select {
	case h := <-p.idle:
		p.active.Add(1)
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.stopped:
		return nil, context.Canceled
	}
}

// put returns a page handle, scoring it by the render outcome. Retired
// pages are destroyed; a replacement is created only if the pool would
// fall under its minimum.
func (p *Pool) put(h *handle, success bool) {
	p.active.Add(-1)

	if success {
		h.recordSuccess()
	} else {
		h.recordFailure()
	}

	if !h.shouldRetire(p.cfg) {
		p.idle <- h
		return
	}

	slog.Debug("render pool: retiring page",
		"err_score", h.errScore, "use_count", h.useCount,
		"age", time.Since(h.created).Round(time.Second))
	p.destroy(h)

	p.mu.Lock()
	needReplacement := p.live < p.cfg.MinPages
	var replacement *handle
	if needReplacement {
		var err error
		replacement, err = p.createLocked()
		if err != nil {
			slog.Warn("render pool: failed to replace retired page", "error", err)
			replacement = nil
		}
	}
	p.mu.Unlock()

	if replacement != nil {
		p.idle <- replacement
	}
}

// Size returns the number of live pages.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Active returns the number of checked-out pages.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// stop destroys all idle pages and refuses further checkouts. Checked-out
// pages are destroyed as they come back through put.
func (p *Pool) stop() {
	close(p.stopped)
	for {
		select {
		case h := <-p.idle:
			p.destroy(h)
		default:
			return
		}
	}
}

func (p *Pool) create() (*handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createLocked()
}

func (p *Pool) createLocked() (*handle, error) {
	page, err := p.factory()
	if err != nil {
		return nil, err
	}
	p.live++
	return newHandle(page), nil
}

func (p *Pool) destroy(h *handle) {
	p.mu.Lock()
	p.live--
	p.mu.Unlock()
	p.destroyer(h.page)
}
