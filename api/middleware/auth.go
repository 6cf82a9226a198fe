package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/llmfetch/models"
)

// Auth returns API-key middleware. A key arrives either as an X-API-Key
// header or as a bearer token; whichever is present first wins. With no
// configured keys the middleware passes everything through, so a private
// deployment can run open without a config switch.
//
// The accepted key is stored on the context under "api_key" and becomes
// the rate-limit identity downstream.
func Auth(apiKeys []string) gin.HandlerFunc {
	valid := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			valid[k] = true
		}
	}
	if len(valid) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := credentialFrom(c)
		switch {
		case key == "":
			rejectUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
		case !valid[key]:
			rejectUnauthorized(c, "invalid API key")
		default:
			c.Set("api_key", key)
			c.Next()
		}
	}
}

func credentialFrom(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func rejectUnauthorized(c *gin.Context, msg string) {
	ferr := models.NewFetchError(models.ErrCodeUnauthorized, msg, nil)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.FetchResponse{
		Success: false,
		Error:   ferr.ToDetail(),
	})
}
