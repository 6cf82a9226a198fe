package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod"
)

// fakePages tracks factory/destroyer calls without a real browser. Pool
// logic never dereferences pages, so zero-value rod.Pages are enough.
type fakePages struct {
	mu        sync.Mutex
	created   int
	destroyed int
}

func (f *fakePages) factory() (*rod.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return &rod.Page{}, nil
}

func (f *fakePages) destroyer(*rod.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed++
}

func (f *fakePages) counts() (created, destroyed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.destroyed
}

func TestPoolPrewarmsMinPages(t *testing.T) {
	fp := &fakePages{}
	p := newPool(PoolConfig{MinPages: 3, HardMax: 5}, fp.factory, fp.destroyer)
	defer p.stop()

	if created, _ := fp.counts(); created != 3 {
		t.Errorf("created %d pages at startup, want 3", created)
	}
	if p.Size() != 3 {
		t.Errorf("Size() = %d, want 3", p.Size())
	}
}

func TestPoolGrowsToHardMax(t *testing.T) {
	fp := &fakePages{}
	p := newPool(PoolConfig{MinPages: 1, HardMax: 3}, fp.factory, fp.destroyer)
	defer p.stop()

	ctx := context.Background()
	var handles []*handle
	for i := 0; i < 3; i++ {
		h, err := p.get(ctx)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		handles = append(handles, h)
	}

	if p.Size() != 3 {
		t.Errorf("Size() = %d, want 3", p.Size())
	}
	if p.Active() != 3 {
		t.Errorf("Active() = %d, want 3", p.Active())
	}

	// Pool is exhausted; a fourth get must wait until a page comes back.
	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := p.get(ctx2); err == nil {
		t.Error("get on an exhausted pool should fail when ctx expires")
	}

	p.put(handles[0], true)
	h, err := p.get(ctx)
	if err != nil {
		t.Fatalf("get after put: %v", err)
	}
	p.put(h, true)
	p.put(handles[1], true)
	p.put(handles[2], true)
}

func TestPoolRetiresUnhealthyPages(t *testing.T) {
	fp := &fakePages{}
	p := newPool(PoolConfig{MinPages: 1, HardMax: 2}, fp.factory, fp.destroyer)
	defer p.stop()

	ctx := context.Background()

	// Three consecutive failures push the error score to 3.0.
	for i := 0; i < 3; i++ {
		h, err := p.get(ctx)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		p.put(h, false)
	}

	if _, destroyed := fp.counts(); destroyed == 0 {
		t.Error("a page failing three times in a row should be retired")
	}
	if p.Size() < 1 {
		t.Errorf("retired page below minimum should be replaced, Size() = %d", p.Size())
	}
}

func TestPoolSuccessForgivesFailures(t *testing.T) {
	h := newHandle(&rod.Page{})
	cfg := PoolConfig{MaxUses: 100}

	// Alternating failure and success never reaches the retirement score.
	for i := 0; i < 10; i++ {
		h.recordFailure()
		h.recordSuccess()
	}
	if h.shouldRetire(cfg) {
		t.Errorf("alternating outcomes retired page at score %v", h.errScore)
	}

	h.recordFailure()
	h.recordFailure()
	if !h.shouldRetire(cfg) {
		t.Errorf("consecutive failures should retire the page, score %v", h.errScore)
	}
}

func TestPoolRetiresByUseCount(t *testing.T) {
	h := newHandle(&rod.Page{})
	cfg := PoolConfig{MaxUses: 5}

	for i := 0; i < 4; i++ {
		h.recordSuccess()
	}
	if h.shouldRetire(cfg) {
		t.Error("page under its use limit should not retire")
	}
	h.recordSuccess()
	if !h.shouldRetire(cfg) {
		t.Error("page at its use limit should retire")
	}
}

func TestPoolRetiresByAge(t *testing.T) {
	h := newHandle(&rod.Page{})
	h.created = time.Now().Add(-time.Hour)

	if !h.shouldRetire(PoolConfig{MaxAge: 50 * time.Minute, MaxUses: 100}) {
		t.Error("page past its age limit should retire")
	}
	if h.shouldRetire(PoolConfig{MaxUses: 100}) {
		t.Error("zero MaxAge disables age-based retirement")
	}
}

func TestPoolStopRefusesCheckout(t *testing.T) {
	fp := &fakePages{}
	p := newPool(PoolConfig{MinPages: 1, HardMax: 1}, fp.factory, fp.destroyer)

	ctx := context.Background()
	h, err := p.get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	p.stop()

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := p.get(ctx2); err == nil {
		t.Error("get after stop should fail")
	}

	// Returning the checked-out handle after stop must not panic.
	p.put(h, true)
}
