// Command benchmark exercises a running llmfetch API against a small set
// of representative sites, averaging latency and token counts over
// repeated runs. Unlike llmfetch-bench it goes through the HTTP surface,
// so it measures the whole service, not just the pipeline.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "llmfetch API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
	fast   = flag.Bool("fast", false, "Skip browser rendering on every request")
)

// Test URLs covering 5 site types.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"Complex", "https://github.com/go-rod/rod"},
}

// --- Request / Response types (mirrors models package) ---

type fetchRequest struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout,omitempty"`
	Fast    bool   `json:"fast,omitempty"`
	NoCache bool   `json:"no_cache,omitempty"`
}

type fetchResponse struct {
	Success bool         `json:"success"`
	Result  *fetchResult `json:"result,omitempty"`
	Error   *errorDetail `json:"error,omitempty"`
}

type fetchResult struct {
	URL        string `json:"url"`
	Tier       int    `json:"tier"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Content    string `json:"content,omitempty"`
	Title      string `json:"title,omitempty"`
	WordCount  int    `json:"word_count,omitempty"`
	TokenCount int    `json:"token_count,omitempty"`
	Cached     bool   `json:"cached"`
	LatencyMs  int64  `json:"latency_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run           int    `json:"run"`
	LatencyMs     int64  `json:"latency_ms"`
	Tier          int    `json:"tier"`
	Outcome       string `json:"outcome"`
	Reason        string `json:"reason,omitempty"`
	TokenCount    int    `json:"token_count"`
	ContentLength int    `json:"content_length"`
	Cached        bool   `json:"cached"`
	HasTitle      bool   `json:"has_title"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type urlAverages struct {
	LatencyMs     float64 `json:"latency_ms"`
	TokenCount    float64 `json:"token_count"`
	ContentLength float64 `json:"content_length"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== llmfetch Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure llmfetchd is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			switch {
			case rr.Success:
				fmt.Printf("OK  %dms  tier %d  %d tokens\n", rr.LatencyMs, rr.Tier, rr.TokenCount)
			case rr.Error != "":
				fmt.Printf("FAILED: %s\n", rr.Error)
			default:
				fmt.Printf("%s (%s)  %dms\n", rr.Outcome, rr.Reason, rr.LatencyMs)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	// Every run bypasses the result cache so the pipeline actually fetches.
	reqBody := fetchRequest{
		URL:     url,
		Timeout: 30000,
		Fast:    *fast,
		NoCache: true,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/fetch", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("X-API-Key", *apiKey)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var fr fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	if fr.Error != nil {
		rr.Error = fr.Error.Message
		return rr
	}
	if fr.Result == nil {
		rr.Error = "response carried no result"
		return rr
	}

	rr.Success = fr.Success
	rr.LatencyMs = fr.Result.LatencyMs
	rr.Tier = fr.Result.Tier
	rr.Outcome = fr.Result.Outcome
	rr.Reason = fr.Result.Reason
	rr.TokenCount = fr.Result.TokenCount
	rr.ContentLength = len(fr.Result.Content)
	rr.Cached = fr.Result.Cached
	rr.HasTitle = fr.Result.Title != ""

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.LatencyMs += float64(r.LatencyMs)
		avg.TokenCount += float64(r.TokenCount)
		avg.ContentLength += float64(r.ContentLength)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.LatencyMs /= n
	avg.TokenCount /= n
	avg.ContentLength /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tAvg Tokens\tContent Len\tTier\n")
	fmt.Fprintf(w, "───\t───────────\t──────────\t───────────\t────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", truncateURL(r.URL, 40), dominantOutcome(r.Runs))
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%d\t%s\t%d\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.LatencyMs),
			int(r.Averages.TokenCount),
			formatInt(int(r.Averages.ContentLength)),
			dominantTier(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

// dominantTier returns the tier most successful runs landed on.
func dominantTier(runs []runResult) int {
	counts := map[int]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Tier]++
		}
	}
	best, bestCount := 0, 0
	for tier, count := range counts {
		if count > bestCount {
			best = tier
			bestCount = count
		}
	}
	return best
}

// dominantOutcome labels a fully failed URL with its most common outcome.
func dominantOutcome(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		key := r.Outcome
		if key == "" {
			key = "error"
		}
		counts[key]++
	}
	best, bestCount := "error", 0
	for outcome, count := range counts {
		if count > bestCount {
			best = outcome
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
