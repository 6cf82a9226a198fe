package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/llmfetch/models"
	"github.com/use-agent/llmfetch/store"
)

func statsRouter(t *testing.T, s *store.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stats", Stats(s))
	return r
}

func doStats(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, models.FetchResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	r.ServeHTTP(w, req)

	var resp models.FetchResponse
	if w.Code != http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal error body: %v", err)
		}
	}
	return w, resp
}

func TestStatsNoStoreConfigured(t *testing.T) {
	r := statsRouter(t, nil)

	w, resp := doStats(t, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeStore {
		t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeStore)
	}
}

func TestStatsStoreFailure(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()

	r := statsRouter(t, s)

	w, resp := doStats(t, r)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInternal {
		t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeInternal)
	}
}

func TestStatsAggregates(t *testing.T) {
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	err = s.Upsert(models.FetchResult{
		URL:       "https://example.com/a",
		Tier:      models.TierPlain,
		Outcome:   models.OutcomeSuccess,
		Title:     "A",
		WordCount: 150,
		LatencyMs: 200,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	r := statsRouter(t, s)

	w, _ := doStats(t, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		Total   int `json:"total"`
		Success int `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal aggregate: %v", err)
	}
	if body.Total != 1 || body.Success != 1 {
		t.Errorf("aggregate = %+v, want total 1 success 1", body)
	}
}
