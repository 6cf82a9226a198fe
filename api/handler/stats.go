package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/llmfetch/models"
	"github.com/use-agent/llmfetch/stats"
	"github.com/use-agent/llmfetch/store"
)

// Stats returns a handler for GET /api/v1/stats, aggregating the results
// database the server was started with. Returns 404 when no results store
// is configured.
func Stats(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s == nil {
			ferr := models.NewFetchError(models.ErrCodeStore, "no results database configured", nil)
			c.JSON(http.StatusNotFound, models.FetchResponse{
				Success: false,
				Error:   ferr.ToDetail(),
			})
			return
		}

		aggregate, err := stats.Generate(s)
		if err != nil {
			ferr := models.NewFetchError(models.ErrCodeInternal, "aggregating results failed", err)
			c.JSON(http.StatusInternalServerError, models.FetchResponse{
				Success: false,
				Error:   ferr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, aggregate)
	}
}
