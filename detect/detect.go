package detect

import (
	"net/http"
	"strings"
)

// AnalyzeResponse inspects the response status and headers for block
// indicators. It returns nil when nothing suspicious is found.
//
// Precedence: explicit status codes first, then the 5xx catch-all, then
// vendor header signatures (which only count against non-200 responses —
// plenty of legitimate pages sit behind Cloudflare or Akamai).
func AnalyzeResponse(status int, headers http.Header, _ string) *BlockVerdict {
	for _, rule := range statusRules {
		if rule.match(status) {
			return &BlockVerdict{Reason: rule.reason}
		}
	}

	if headers.Get("Cf-Ray") != "" && status != http.StatusOK {
		return &BlockVerdict{Reason: "cloudflare_block"}
	}

	if server := headers.Get("Server"); strings.Contains(server, "AkamaiGHost") && status != http.StatusOK {
		return &BlockVerdict{Reason: "akamai_block"}
	}

	return nil
}

// DetectBlockPage scans HTML for block-page content: challenge
// interstitials, CAPTCHA widgets, WAF deny pages, and bot-mitigation vendor
// signatures. Returns nil when the page looks ordinary.
func DetectBlockPage(html string) *BlockVerdict {
	lower := strings.ToLower(html)

	for _, rule := range contentRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, pattern) {
				return &BlockVerdict{Reason: rule.reason}
			}
		}
	}

	return nil
}
