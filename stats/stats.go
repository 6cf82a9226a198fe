// Package stats aggregates stored fetch results into acquisition-quality
// reports: outcome counts, tier distribution, reason breakdowns, and
// latency percentiles.
package stats

import (
	"github.com/use-agent/llmfetch/models"
	"github.com/use-agent/llmfetch/store"
)

// TierDistribution counts results by the tier that settled them.
type TierDistribution struct {
	Tier0 int `json:"tier0"`
	Tier1 int `json:"tier1"`
}

// ContentQuality summarizes extraction quality across successes.
type ContentQuality struct {
	HasTitle     int `json:"hasTitle"`
	Over100Words int `json:"over100Words"`
}

// Latency holds percentile latencies of successful fetches, in ms.
type Latency struct {
	P50 int64 `json:"p50"`
	P95 int64 `json:"p95"`
	P99 int64 `json:"p99"`
}

// Stats is a full aggregate over one results database.
type Stats struct {
	Total            int              `json:"total"`
	Success          int              `json:"success"`
	Blocked          int              `json:"blocked"`
	Errors           int              `json:"errors"`
	SuccessRate      float64          `json:"successRate"`
	TierDistribution TierDistribution `json:"tierDistribution"`
	BlockReasons     map[string]int   `json:"blockReasons"`
	ErrorReasons     map[string]int   `json:"errorReasons"`
	ContentQuality   ContentQuality   `json:"contentQuality"`
	Latency          Latency          `json:"latency"`
}

// Generate computes stats from a results store.
func Generate(s *store.Store) (*Stats, error) {
	total, err := s.Total()
	if err != nil {
		return nil, err
	}
	success, err := s.CountByOutcome(models.OutcomeSuccess)
	if err != nil {
		return nil, err
	}
	blocked, err := s.CountByOutcome(models.OutcomeBlocked)
	if err != nil {
		return nil, err
	}
	tier0, tier1, err := s.TierCounts()
	if err != nil {
		return nil, err
	}
	blockReasons, err := s.BlockReasons()
	if err != nil {
		return nil, err
	}
	errorReasons, err := s.ErrorReasons()
	if err != nil {
		return nil, err
	}
	hasTitle, over100, err := s.ContentQuality()
	if err != nil {
		return nil, err
	}
	latencies, err := s.SuccessLatencies()
	if err != nil {
		return nil, err
	}

	var successRate float64
	if total > 0 {
		successRate = float64(success) / float64(total) * 100
	}

	return &Stats{
		Total:       total,
		Success:     success,
		Blocked:     blocked,
		Errors:      total - success - blocked,
		SuccessRate: successRate,
		TierDistribution: TierDistribution{
			Tier0: tier0,
			Tier1: tier1,
		},
		BlockReasons: blockReasons,
		ErrorReasons: errorReasons,
		ContentQuality: ContentQuality{
			HasTitle:     hasTitle,
			Over100Words: over100,
		},
		Latency: Latency{
			P50: Percentile(latencies, 0.5),
			P95: Percentile(latencies, 0.95),
			P99: Percentile(latencies, 0.99),
		},
	}, nil
}

// Percentile returns the q-th percentile of latencies sorted ascending,
// using direct indexing at floor(n*q). The index is clamped to the last
// element; an empty slice yields 0.
func Percentile(sorted []int64, q float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
