package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const reportRule = "═══════════════════════════════════════════════════════════════"

// WriteReport renders a human-readable report.
func (st *Stats) WriteReport(w io.Writer) {
	fmt.Fprintln(w, reportRule)
	fmt.Fprintln(w, "                    BENCHMARK REPORT")
	fmt.Fprintln(w, reportRule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total URLs:        %d\n", st.Total)
	fmt.Fprintf(w, "Success:           %d (%.1f%%)\n", st.Success, st.SuccessRate)
	fmt.Fprintf(w, "Blocked:           %d (%.1f%%)\n", st.Blocked, st.pct(st.Blocked))
	fmt.Fprintf(w, "Errors:            %d (%.1f%%)\n", st.Errors, st.pct(st.Errors))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tier Distribution:")
	fmt.Fprintf(w, "  Tier 0:          %d (%.1f%%)\n", st.TierDistribution.Tier0, st.pct(st.TierDistribution.Tier0))
	fmt.Fprintf(w, "  Tier 1:          %d (%.1f%%)\n", st.TierDistribution.Tier1, st.pct(st.TierDistribution.Tier1))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Block Reasons:")
	writeReasons(w, st.BlockReasons)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Error Reasons:")
	writeReasons(w, st.ErrorReasons)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Content Quality (of successes):")
	fmt.Fprintf(w, "  Has title:       %d (%.1f%%)\n", st.ContentQuality.HasTitle, st.pctOfSuccess(st.ContentQuality.HasTitle))
	fmt.Fprintf(w, "  >100 words:      %d (%.1f%%)\n", st.ContentQuality.Over100Words, st.pctOfSuccess(st.ContentQuality.Over100Words))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Latency:")
	fmt.Fprintf(w, "  p50:             %dms\n", st.Latency.P50)
	fmt.Fprintf(w, "  p95:             %dms\n", st.Latency.P95)
	fmt.Fprintf(w, "  p99:             %dms\n", st.Latency.P99)
	fmt.Fprintln(w)
	fmt.Fprintln(w, reportRule)
}

// WriteComparison renders success rate and tail latency deltas against a
// baseline run.
func WriteComparison(w io.Writer, current, baseline *Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMPARISON vs BASELINE:")
	fmt.Fprintf(w, "  Success rate:    %s%%\n", delta(current.SuccessRate, baseline.SuccessRate))
	fmt.Fprintf(w, "  p95 latency:     %sms\n", delta(float64(current.Latency.P95), float64(baseline.Latency.P95)))
}

func delta(a, b float64) string {
	diff := a - b
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f", sign, diff)
}

func (st *Stats) pct(n int) float64 {
	if st.Total == 0 {
		return 0
	}
	return float64(n) / float64(st.Total) * 100
}

func (st *Stats) pctOfSuccess(n int) float64 {
	if st.Success == 0 {
		return 0
	}
	return float64(n) / float64(st.Success) * 100
}

// writeReasons prints reasons by descending count, ties broken by name so
// output is stable.
func writeReasons(w io.Writer, reasons map[string]int) {
	type rc struct {
		reason string
		count  int
	}
	sorted := make([]rc, 0, len(reasons))
	for reason, count := range reasons {
		sorted = append(sorted, rc{reason, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].reason < sorted[j].reason
	})
	for _, r := range sorted {
		fmt.Fprintf(w, "  %s %d\n", pad(r.reason, 18), r.count)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
