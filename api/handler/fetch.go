package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/llmfetch/fetch"
	"github.com/use-agent/llmfetch/models"
)

// Fetch returns a handler for POST /api/v1/fetch.
//
// The pipeline itself never errors: blocked, empty, and failed fetches all
// come back as classified results with HTTP 200. Only a malformed request
// produces an error response.
func Fetch(f *fetch.Fetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ferr := models.NewFetchError(models.ErrCodeInvalidInput, err.Error(), err)
			c.JSON(http.StatusBadRequest, models.FetchResponse{
				Success: false,
				Error:   ferr.ToDetail(),
			})
			return
		}
		req.Defaults()

		result := f.Do(c.Request.Context(), req.URL, fetch.Options{
			Timeout:  time.Duration(req.Timeout) * time.Millisecond,
			Fast:     req.Fast,
			NoCache:  req.NoCache,
			Selector: req.Selector,
		})

		c.JSON(http.StatusOK, models.FetchResponse{
			Success: result.Success(),
			Result:  &result,
		})
	}
}
