// llmfetch-report aggregates a results database into a benchmark report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/use-agent/llmfetch/stats"
	"github.com/use-agent/llmfetch/store"
)

func main() {
	dbPath := flag.String("db", "results.db", "path to results database")
	asJSON := flag.Bool("json", false, "emit stats as JSON")
	comparePath := flag.String("compare", "", "baseline database to compare against")
	flag.Parse()

	current, err := load(*dbPath)
	if err != nil {
		fatal(err)
	}

	if *asJSON {
		out, err := json.MarshalIndent(current, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(out))
	} else {
		current.WriteReport(os.Stdout)
	}

	if *comparePath != "" {
		baseline, err := load(*comparePath)
		if err != nil {
			fatal(err)
		}
		stats.WriteComparison(os.Stdout, current, baseline)
	}
}

func load(path string) (*stats.Stats, error) {
	s, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return stats.Generate(s)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "llmfetch-report: %v\n", err)
	os.Exit(1)
}
