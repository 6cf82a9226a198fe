// Package store persists fetch results to SQLite so that interrupted
// batch runs can resume without re-fetching completed URLs.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/use-agent/llmfetch/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	url TEXT PRIMARY KEY,
	status TEXT,
	tier INTEGER,
	block_reason TEXT,
	has_title INTEGER,
	word_count INTEGER,
	token_count INTEGER,
	latency_ms INTEGER,
	timestamp INTEGER
);
CREATE INDEX IF NOT EXISTS idx_status ON results(status);
CREATE INDEX IF NOT EXISTS idx_tier ON results(tier);
`

// Store wraps a SQLite results database. Writes funnel through a single
// connection, so concurrent use from one process is safe.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the results database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	return open(path, false)
}

// OpenReadOnly opens an existing results database for reporting. No
// schema is created; a missing file is an error.
func OpenReadOnly(path string) (*Store, error) {
	return open(path, true)
}

func open(path string, readOnly bool) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000", path)
		if readOnly {
			dsn += "&mode=ro"
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One connection keeps writes serialized and makes :memory: databases
	// visible across queries.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if !readOnly {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: init schema: %w", err)
		}
	}
	return s, nil
}

// Upsert writes a result, replacing any previous row for the same URL.
func (s *Store) Upsert(result models.FetchResult) error {
	hasTitle := 0
	if result.Title != "" {
		hasTitle = 1
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO results
		(url, status, tier, block_reason, has_title, word_count, token_count, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.URL,
		string(result.Outcome),
		result.Tier,
		result.Reason,
		hasTitle,
		result.WordCount,
		result.TokenCount,
		result.LatencyMs,
		result.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: upsert %s: %w", result.URL, err)
	}
	return nil
}

// Has reports whether a result row exists for url.
func (s *Store) Has(url string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM results WHERE url = ?`, url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: has %s: %w", url, err)
	}
	return true, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
