package store

import (
	"fmt"

	"github.com/use-agent/llmfetch/models"
)

// Total returns the number of stored results.
func (s *Store) Total() (int, error) {
	return s.scalar(`SELECT COUNT(*) FROM results`)
}

// CountByOutcome returns the number of results with the given outcome.
func (s *Store) CountByOutcome(outcome models.Outcome) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE status = ?`, string(outcome)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count by outcome: %w", err)
	}
	return n, nil
}

// TierCounts returns how many results were settled at each tier.
func (s *Store) TierCounts() (tier0, tier1 int, err error) {
	tier0, err = s.scalar(`SELECT COUNT(*) FROM results WHERE tier = 0`)
	if err != nil {
		return 0, 0, err
	}
	tier1, err = s.scalar(`SELECT COUNT(*) FROM results WHERE tier = 1`)
	if err != nil {
		return 0, 0, err
	}
	return tier0, tier1, nil
}

// BlockReasons returns per-reason counts for blocked results.
func (s *Store) BlockReasons() (map[string]int, error) {
	return s.reasonCounts(`
		SELECT block_reason, COUNT(*) FROM results
		WHERE status = ? GROUP BY block_reason`, string(models.OutcomeBlocked))
}

// ErrorReasons returns per-reason counts for everything that neither
// succeeded nor was blocked (errors, empty pages, skipped SPAs).
func (s *Store) ErrorReasons() (map[string]int, error) {
	return s.reasonCounts(`
		SELECT block_reason, COUNT(*) FROM results
		WHERE status NOT IN (?, ?) GROUP BY block_reason`,
		string(models.OutcomeSuccess), string(models.OutcomeBlocked))
}

// ContentQuality returns how many results carried a title and how many
// exceeded 100 words.
func (s *Store) ContentQuality() (hasTitle, over100Words int, err error) {
	hasTitle, err = s.scalar(`SELECT COUNT(*) FROM results WHERE has_title = 1`)
	if err != nil {
		return 0, 0, err
	}
	over100Words, err = s.scalar(`SELECT COUNT(*) FROM results WHERE word_count > 100`)
	if err != nil {
		return 0, 0, err
	}
	return hasTitle, over100Words, nil
}

// SuccessLatencies returns latencies of successful fetches in ascending
// order, ready for percentile indexing.
func (s *Store) SuccessLatencies() ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT latency_ms FROM results
		WHERE status = ? ORDER BY latency_ms`, string(models.OutcomeSuccess))
	if err != nil {
		return nil, fmt.Errorf("store: success latencies: %w", err)
	}
	defer rows.Close()

	var latencies []int64
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, fmt.Errorf("store: scan latency: %w", err)
		}
		latencies = append(latencies, ms)
	}
	return latencies, rows.Err()
}

func (s *Store) scalar(query string) (int, error) {
	var n int
	if err := s.db.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return n, nil
}

func (s *Store) reasonCounts(query string, args ...any) (map[string]int, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: reason counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("store: scan reason: %w", err)
		}
		if reason == "" {
			reason = "unknown"
		}
		counts[reason] = n
	}
	return counts, rows.Err()
}
