package models

// FetchResponse is the body for POST /api/v1/fetch.
type FetchResponse struct {
	Success bool         `json:"success"`
	Result  *FetchResult `json:"result,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// PoolStats is a snapshot of the renderer page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// HealthResponse is the body for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool"`
	Version   string    `json:"version"`
}
