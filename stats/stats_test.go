package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/use-agent/llmfetch/models"
	"github.com/use-agent/llmfetch/store"
)

func TestPercentile(t *testing.T) {
	latencies := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	tests := []struct {
		q    float64
		want int64
	}{
		{0.5, 60},   // floor(10*0.5)=5 -> 6th value
		{0.95, 100}, // floor(10*0.95)=9 -> last value
		{0.99, 100},
		{0.0, 10},
	}
	for _, tt := range tests {
		if got := Percentile(latencies, tt.q); got != tt.want {
			t.Errorf("Percentile(q=%v) = %d, want %d", tt.q, got, tt.want)
		}
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := Percentile(nil, 0.95); got != 0 {
		t.Errorf("Percentile(empty) = %d, want 0", got)
	}
}

func TestPercentileSingle(t *testing.T) {
	if got := Percentile([]int64{42}, 0.99); got != 42 {
		t.Errorf("Percentile(single, 0.99) = %d, want 42", got)
	}
}

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	results := []models.FetchResult{
		{URL: "https://a.example/1", Outcome: models.OutcomeSuccess, Tier: 0, Title: "t", WordCount: 500, LatencyMs: 100},
		{URL: "https://a.example/2", Outcome: models.OutcomeSuccess, Tier: 0, Title: "t", WordCount: 200, LatencyMs: 200},
		{URL: "https://a.example/3", Outcome: models.OutcomeSuccess, Tier: 1, WordCount: 80, LatencyMs: 900},
		{URL: "https://a.example/4", Outcome: models.OutcomeBlocked, Reason: models.ReasonCloudflare, Tier: 0},
		{URL: "https://a.example/5", Outcome: models.OutcomeError, Reason: models.ReasonTimeout, Tier: 0},
	}
	for _, r := range results {
		r.Timestamp = time.Now()
		if err := s.Upsert(r); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	return s
}

func TestGenerate(t *testing.T) {
	st, err := Generate(seedStore(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if st.Total != 5 {
		t.Errorf("Total = %d, want 5", st.Total)
	}
	if st.Success != 3 {
		t.Errorf("Success = %d, want 3", st.Success)
	}
	if st.Blocked != 1 {
		t.Errorf("Blocked = %d, want 1", st.Blocked)
	}
	if st.Errors != 1 {
		t.Errorf("Errors = %d, want 1", st.Errors)
	}
	if st.SuccessRate != 60.0 {
		t.Errorf("SuccessRate = %v, want 60.0", st.SuccessRate)
	}
	if st.TierDistribution.Tier0 != 4 || st.TierDistribution.Tier1 != 1 {
		t.Errorf("tiers = %+v, want 4/1", st.TierDistribution)
	}
	if st.BlockReasons[models.ReasonCloudflare] != 1 {
		t.Errorf("block reasons = %v", st.BlockReasons)
	}
	if st.ErrorReasons[models.ReasonTimeout] != 1 {
		t.Errorf("error reasons = %v", st.ErrorReasons)
	}
	if st.ContentQuality.HasTitle != 2 {
		t.Errorf("hasTitle = %d, want 2", st.ContentQuality.HasTitle)
	}
	if st.ContentQuality.Over100Words != 2 {
		t.Errorf("over100Words = %d, want 2", st.ContentQuality.Over100Words)
	}
	// Latencies sorted: [100 200 900]; p50 -> index 1.
	if st.Latency.P50 != 200 {
		t.Errorf("p50 = %d, want 200", st.Latency.P50)
	}
	if st.Latency.P95 != 900 {
		t.Errorf("p95 = %d, want 900", st.Latency.P95)
	}
}

func TestGenerateEmptyStore(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	st, err := Generate(s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if st.Total != 0 || st.SuccessRate != 0 || st.Latency.P95 != 0 {
		t.Errorf("empty store stats should be zeroed, got %+v", st)
	}
}

func TestWriteReport(t *testing.T) {
	st, err := Generate(seedStore(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var buf strings.Builder
	st.WriteReport(&buf)
	out := buf.String()

	for _, want := range []string{
		"Total URLs:        5",
		"Success:           3 (60.0%)",
		"Tier 1:          1",
		models.ReasonCloudflare,
		"p50:             200ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteComparison(t *testing.T) {
	current := &Stats{SuccessRate: 75.0, Latency: Latency{P95: 800}}
	baseline := &Stats{SuccessRate: 60.0, Latency: Latency{P95: 1200}}

	var buf strings.Builder
	WriteComparison(&buf, current, baseline)
	out := buf.String()

	if !strings.Contains(out, "+15.0%") {
		t.Errorf("comparison missing success delta:\n%s", out)
	}
	if !strings.Contains(out, "-400.0ms") {
		t.Errorf("comparison missing latency delta:\n%s", out)
	}
}
