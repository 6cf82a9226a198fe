// Package batch runs the fetch pipeline over large URL lists with bounded
// concurrency, persisting results so interrupted runs resume where they
// left off.
package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/use-agent/llmfetch/store"
)

// LoadWorklist reads URLs from path, one per line. Blank lines and lines
// starting with # are ignored. URLs already present in the store are
// skipped, so re-running against the same database resumes the previous
// run. limit caps the worklist after dedup; zero means no cap.
func LoadWorklist(path string, s *store.Store, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("batch: open worklist: %w", err)
	}
	defer f.Close()

	var urls []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url == "" || strings.HasPrefix(url, "#") {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		done, err := s.Has(url)
		if err != nil {
			return nil, err
		}
		if done {
			continue
		}

		urls = append(urls, url)
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("batch: read worklist: %w", err)
	}
	return urls, nil
}
