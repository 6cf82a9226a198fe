package models

// FetchRequest is the payload for POST /api/v1/fetch.
type FetchRequest struct {
	// URL is the target page. Required. A missing scheme defaults to https.
	URL string `json:"url" binding:"required"`

	// Timeout is the transport deadline in milliseconds for the entire
	// attempt. Default: 10000.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=100,max=120000"`

	// Fast disables tier-1 escalation: pages that need JavaScript are
	// classified needs_js_skipped instead of being rendered.
	Fast bool `json:"fast,omitempty"`

	// NoCache bypasses the in-memory result cache.
	NoCache bool `json:"no_cache,omitempty"`

	// Selector is an optional CSS selector applied to successful content
	// before markdown conversion.
	Selector string `json:"selector,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *FetchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 10000
	}
}
