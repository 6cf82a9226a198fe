package models

import "time"

// Outcome is the terminal classification of a single fetch attempt.
// Exactly one outcome holds per result.
type Outcome string

const (
	// OutcomeSuccess means content longer than the minimum threshold was
	// extracted (at tier 0 or tier 1).
	OutcomeSuccess Outcome = "success"

	// OutcomeBlocked means the server deliberately refused automated
	// access (status code, header signature, or block-page content).
	OutcomeBlocked Outcome = "blocked"

	// OutcomeNeedsJSSkipped means the page needs JavaScript rendering but
	// escalation was suppressed (fast mode or escalation budget).
	OutcomeNeedsJSSkipped Outcome = "needs_js_skipped"

	// OutcomeEmpty means the page yielded no usable content and does not
	// look like it would benefit from rendering.
	OutcomeEmpty Outcome = "empty"

	// OutcomeError means the transport failed before any content arrived.
	OutcomeError Outcome = "error"
)

// Tier identifies which fetch pass produced the result.
const (
	TierPlain    = 0 // plain HTTP fetch
	TierRendered = 1 // after script-execution escalation
)

// Failure reasons, grouped by class. The vocabulary is closed: every
// non-success result carries exactly one of these strings.
const (
	// Network class (outcome = error).
	ReasonTimeout           = "timeout"
	ReasonDNSError          = "dns_error"
	ReasonConnectionRefused = "connection_refused"
	ReasonConnectionReset   = "connection_reset"
	ReasonSSLError          = "ssl_error"
	ReasonUnknown           = "unknown"

	// Block class (outcome = blocked), response-level.
	ReasonForbidden          = "forbidden"
	ReasonRateLimited        = "rate_limited"
	ReasonServiceUnavailable = "service_unavailable"
	ReasonServerError        = "server_error"
	ReasonCloudflareBlock    = "cloudflare_block"
	ReasonAkamaiBlock        = "akamai_block"

	// Block class (outcome = blocked), content-level.
	ReasonCloudflare = "cloudflare"
	ReasonCaptcha    = "captcha"
	ReasonWAF        = "waf"
	ReasonPerimeterX = "perimeterx"
	ReasonDataDome   = "datadome"
	ReasonSPAFailed  = "spa_failed"

	// Content class.
	ReasonNoContent  = "no_content"  // outcome = empty
	ReasonSPASkipped = "spa_skipped" // outcome = needs_js_skipped
)

// FetchResult is the single terminal record produced per URL attempt.
// It is immutable once created and persisted by upsert keyed on URL.
type FetchResult struct {
	URL     string  `json:"url"`
	Tier    int     `json:"tier"`
	Outcome Outcome `json:"outcome"`

	// Reason is set whenever Outcome != success, drawn from the closed
	// vocabulary above.
	Reason string `json:"reason,omitempty"`

	// Content fields, populated only on success.
	Content    string `json:"content,omitempty"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Published  string `json:"published,omitempty"`
	WordCount  int    `json:"word_count,omitempty"`
	TokenCount int    `json:"token_count,omitempty"`

	// Fingerprint is a 64-bit SimHash of the extracted content, letting
	// consumers spot near-duplicate pages across URLs.
	Fingerprint uint64 `json:"fingerprint,omitempty"`

	Cached    bool      `json:"cached"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Success reports whether the attempt produced usable content.
func (r *FetchResult) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// Blocked reports whether the attempt was refused by the target.
func (r *FetchResult) Blocked() bool {
	return r.Outcome == OutcomeBlocked
}
