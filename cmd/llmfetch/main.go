// llmfetch fetches a single URL and prints LLM-ready markdown.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/use-agent/llmfetch/config"
	"github.com/use-agent/llmfetch/extract"
	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/render"
)

func main() {
	format := flag.String("format", "md", "output format: md, json, text")
	selector := flag.String("select", "", "CSS selector to extract")
	grepPat := flag.String("grep", "", "filter content lines by regex pattern")
	maxTokens := flag.Int("max-tokens", 0, "truncate output to approximately this many tokens")
	timeout := flag.Int("timeout", 10000, "request timeout in ms")
	fast := flag.Bool("fast", false, "skip browser rendering for script-heavy pages")
	noCache := flag.Bool("no-cache", false, "bypass the result cache")
	debug := flag.Bool("debug", false, "enable debug output")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	url := flag.Arg(0)

	initLogger(*debug)
	cfg := config.Load()

	// The browser is only worth launching when escalation is possible.
	var renderer fetch.Renderer
	if !*fast {
		rod, err := render.NewRodRenderer(render.Config{
			Headless:     cfg.Render.Headless,
			NoSandbox:    cfg.Render.NoSandbox,
			BrowserBin:   cfg.Render.BrowserBin,
			PollInterval: cfg.Render.PollInterval,
			Pool:         render.PoolConfig{MinPages: 1, HardMax: 1},
		})
		if err != nil {
			slog.Debug("browser unavailable, tier-0 only", "error", err)
		} else {
			renderer = rod
			defer rod.Close()
		}
	}

	client := fetch.NewClient(fetch.ClientConfig{
		AllowedHosts: cfg.Fetch.AllowedHosts,
		MaxRedirects: cfg.Fetch.MaxRedirects,
	})
	fetcher := fetch.NewFetcher(client, extract.New(), renderer, fetch.FetcherConfig{
		RenderBudget: cfg.Render.Budget,
	})

	result := fetcher.Do(context.Background(), url, fetch.Options{
		Timeout:  time.Duration(*timeout) * time.Millisecond,
		Fast:     *fast,
		NoCache:  *noCache,
		Selector: *selector,
		Debug:    *debug,
	})

	if !result.Success() {
		fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", result.Outcome, result.Reason)
		os.Exit(1)
	}

	content, err := shapeContent(result.Content, *grepPat, *maxTokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	result.Content = content

	switch *format {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	case "text":
		fmt.Println(stripMarkdown(result.Content))
	default:
		fmt.Println(result.Content)
	}
}

// shapeContent applies the optional grep filter and token cap.
func shapeContent(content, grepPat string, maxTokens int) (string, error) {
	if grepPat != "" {
		re, err := regexp.Compile(grepPat)
		if err != nil {
			return "", fmt.Errorf("invalid --grep pattern: %w", err)
		}
		var kept []string
		for _, line := range strings.Split(content, "\n") {
			if re.MatchString(line) {
				kept = append(kept, line)
			}
		}
		content = strings.Join(kept, "\n")
	}

	if maxTokens > 0 {
		content = truncateToTokens(content, maxTokens)
	}
	return content, nil
}

// truncateToTokens cuts content at the word whose estimated token count
// crosses the cap.
func truncateToTokens(content string, maxTokens int) string {
	words := strings.Fields(content)
	keep := len(words)
	for i := range words {
		if extract.EstimateTokens(i+1) > maxTokens {
			keep = i
			break
		}
	}
	if keep >= len(words) {
		return content
	}
	return strings.Join(words[:keep], " ")
}

var markdownSyntax = regexp.MustCompile("[#*`\\[\\]]")

func stripMarkdown(content string) string {
	return markdownSyntax.ReplaceAllString(content, "")
}

func initLogger(debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func usage() {
	fmt.Fprintf(os.Stderr, `llmfetch - fast web-to-markdown fetcher for LLMs

Usage:
  llmfetch [flags] <url>

Flags:
`)
	flag.PrintDefaults()
}
