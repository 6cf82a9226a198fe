package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/llmfetch/api/handler"
	"github.com/use-agent/llmfetch/api/middleware"
	"github.com/use-agent/llmfetch/config"
	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(f *fetch.Fetcher, pool handler.PoolStatsSource, resultStore *store.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(pool, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/fetch", handler.Fetch(f))
	protected.GET("/stats", handler.Stats(resultStore))

	return r
}
