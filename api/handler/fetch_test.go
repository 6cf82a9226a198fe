package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/llmfetch/extract"
	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/models"
)

func fetchRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := fetch.NewFetcher(fetch.NewClient(fetch.ClientConfig{}), extract.New(), nil, fetch.FetcherConfig{})
	r := gin.New()
	r.POST("/fetch", Fetch(f))
	return r
}

func TestFetchRejectsMalformedBody(t *testing.T) {
	r := fetchRouter(t)

	for name, body := range map[string]string{
		"not json":    "{",
		"missing url": `{"timeout": 5000}`,
		"bad timeout": `{"url": "https://example.com", "timeout": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/fetch", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp models.FetchResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
				t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeInvalidInput)
			}
		})
	}
}
