package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/use-agent/llmfetch/config"
	"github.com/use-agent/llmfetch/models"
)

const (
	// limiterIdleTTL is how long an identity may go unseen before its
	// token bucket is discarded.
	limiterIdleTTL = time.Hour

	// limiterSweepEvery is the interval between eviction sweeps.
	limiterSweepEvery = 5 * time.Minute
)

// limiterTable holds one token bucket per caller identity. Buckets for
// identities not seen within limiterIdleTTL are swept out so the map
// cannot grow without bound under churning client IPs.
type limiterTable struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	seen    map[string]time.Time
	rps     rate.Limit
	burst   int
}

func newLimiterTable(cfg config.RateLimitConfig) *limiterTable {
	t := &limiterTable{
		buckets: make(map[string]*rate.Limiter),
		seen:    make(map[string]time.Time),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
	}
	go t.sweepLoop()
	return t
}

// take returns the bucket for identity, creating it on first sight.
func (t *limiterTable) take(identity string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	lim, ok := t.buckets[identity]
	if !ok {
		lim = rate.NewLimiter(t.rps, t.burst)
		t.buckets[identity] = lim
	}
	t.seen[identity] = time.Now()
	return lim
}

func (t *limiterTable) sweepLoop() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-limiterIdleTTL)
		t.mu.Lock()
		for id, last := range t.seen {
			if last.Before(cutoff) {
				delete(t.buckets, id)
				delete(t.seen, id)
			}
		}
		t.mu.Unlock()
	}
}

// RateLimit returns token-bucket rate limiting middleware keyed by API key
// when auth ran first, otherwise by client IP.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	table := newLimiterTable(cfg)

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key, ok := c.Get("api_key"); ok {
			identity = key.(string)
		}

		if !table.take(identity).Allow() {
			ferr := models.NewFetchError(models.ErrCodeRateLimited, "rate limit exceeded, please slow down", nil)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.FetchResponse{
				Success: false,
				Error:   ferr.ToDetail(),
			})
			return
		}

		c.Next()
	}
}
