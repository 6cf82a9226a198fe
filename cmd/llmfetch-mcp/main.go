// llmfetch-mcp exposes a running llmfetchd instance as MCP tools over
// stdio, so LLM agents can fetch pages as markdown directly.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// fetchRequest mirrors the llmfetch API request model.
type fetchRequest struct {
	URL      string `json:"url"`
	Fast     bool   `json:"fast,omitempty"`
	NoCache  bool   `json:"no_cache,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// fetchResponse mirrors the llmfetch API response model.
type fetchResponse struct {
	Success bool `json:"success"`
	Result  *struct {
		URL        string `json:"url"`
		Tier       int    `json:"tier"`
		Outcome    string `json:"outcome"`
		Reason     string `json:"reason"`
		Content    string `json:"content"`
		Title      string `json:"title"`
		Author     string `json:"author"`
		WordCount  int    `json:"word_count"`
		TokenCount int    `json:"token_count"`
		LatencyMs  int64  `json:"latency_ms"`
	} `json:"result"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("LLMFETCH_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("LLMFETCH_API_KEY")

	s := server.NewMCPServer(
		"llmfetch",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	fetchURLTool := mcp.NewTool("fetch_url",
		mcp.WithDescription("Fetch a web page and return its main content as LLM-ready markdown. Escalates to a headless browser for JavaScript-heavy pages and reports why a page was blocked when fetching fails."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to fetch"),
		),
		mcp.WithBoolean("fast",
			mcp.Description("Skip browser rendering: pages that need JavaScript come back as needs_js_skipped instead of being rendered"),
		),
		mcp.WithString("selector",
			mcp.Description("Optional CSS selector narrowing extraction to matching elements"),
		),
	)
	s.AddTool(fetchURLTool, handleFetchURL(apiURL, apiKey))

	fetchStatsTool := mcp.NewTool("fetch_stats",
		mcp.WithDescription("Report aggregate fetch statistics from the server's results database: outcome counts, tier distribution, block reasons, and latency percentiles."),
	)
	s.AddTool(fetchStatsTool, handleFetchStats(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleFetchURL(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := fetchRequest{
			URL:      url,
			Fast:     request.GetBool("fast", false),
			Selector: request.GetString("selector", ""),
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/fetch", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var fetchResp fetchResponse
		if err := json.Unmarshal(respBody, &fetchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if fetchResp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", fetchResp.Error.Code, fetchResp.Error.Message)), nil
		}
		if fetchResp.Result == nil {
			return mcp.NewToolResultError("empty response from fetch API"), nil
		}

		r := fetchResp.Result
		if !fetchResp.Success {
			return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %s (%s)", r.Outcome, r.Reason)), nil
		}

		result := fmt.Sprintf("Title: %s\nSource: %s\n\n%s\n\n---\nTokens: ~%d | Tier: %d | Latency: %dms",
			r.Title, r.URL, r.Content, r.TokenCount, r.Tier, r.LatencyMs)
		return mcp.NewToolResultText(result), nil
	}
}

func handleFetchStats(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/stats", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(fmt.Sprintf("stats unavailable (HTTP %d): %s", resp.StatusCode, respBody)), nil
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
			pretty.Write(respBody)
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}
