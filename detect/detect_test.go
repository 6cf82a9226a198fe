package detect

import (
	"net/http"
	"testing"
)

func TestAnalyzeResponse_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"forbidden", 403, "forbidden"},
		{"rate limited", 429, "rate_limited"},
		{"service unavailable", 503, "service_unavailable"},
		{"internal error", 500, "server_error"},
		{"bad gateway", 502, "server_error"},
		{"gateway timeout", 504, "server_error"},
		{"upper 5xx", 599, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeResponse(tt.status, http.Header{}, "")
			if verdict == nil {
				t.Fatalf("status %d: expected a verdict, got nil", tt.status)
			}
			if verdict.Reason != tt.want {
				t.Errorf("status %d: reason = %q, want %q", tt.status, verdict.Reason, tt.want)
			}
		})
	}
}

func TestAnalyzeResponse_CleanOK(t *testing.T) {
	verdict := AnalyzeResponse(200, http.Header{}, "<html><body>hello</body></html>")
	if verdict != nil {
		t.Errorf("clean 200 response should yield no verdict, got %q", verdict.Reason)
	}
}

func TestAnalyzeResponse_CloudflareHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Cf-Ray", "8a1b2c3d4e5f-IAD")

	if verdict := AnalyzeResponse(200, h, ""); verdict != nil {
		t.Errorf("cf-ray with status 200 should not block, got %q", verdict.Reason)
	}

	verdict := AnalyzeResponse(404, h, "")
	if verdict == nil || verdict.Reason != "cloudflare_block" {
		t.Errorf("cf-ray with non-200 should yield cloudflare_block, got %v", verdict)
	}
}

func TestAnalyzeResponse_AkamaiHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Server", "AkamaiGHost")

	if verdict := AnalyzeResponse(200, h, ""); verdict != nil {
		t.Errorf("AkamaiGHost with status 200 should not block, got %q", verdict.Reason)
	}

	verdict := AnalyzeResponse(400, h, "")
	if verdict == nil || verdict.Reason != "akamai_block" {
		t.Errorf("AkamaiGHost with non-200 should yield akamai_block, got %v", verdict)
	}
}

func TestAnalyzeResponse_StatusBeatsHeaders(t *testing.T) {
	// 403 behind Cloudflare classifies by status, not by header.
	h := http.Header{}
	h.Set("Cf-Ray", "8a1b2c3d4e5f-IAD")

	verdict := AnalyzeResponse(403, h, "")
	if verdict == nil || verdict.Reason != "forbidden" {
		t.Errorf("403 + cf-ray should classify as forbidden, got %v", verdict)
	}
}

func TestDetectBlockPage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"cloudflare challenge", "<title>Just a moment...</title>", "cloudflare"},
		{"cloudflare js", "<script>window._cf_chl_opt={}</script>", "cloudflare"},
		{"recaptcha", `<div class="g-recaptcha"></div>`, "captcha"},
		{"hcaptcha", `<div class="h-captcha" data-sitekey="x">hCaptcha</div>`, "captcha"},
		{"generic waf", "<h1>Access Denied</h1>", "waf"},
		{"bot detected", "<p>Bot detected. Automated access is prohibited.</p>", "waf"},
		{"perimeterx", "<script src='//client.perimeterx.net/px.js'></script>", "perimeterx"},
		{"datadome", "<script src='https://ct.datadome.co/dd.js'></script>", "datadome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := DetectBlockPage(tt.html)
			if verdict == nil {
				t.Fatal("expected a verdict, got nil")
			}
			if verdict.Reason != tt.want {
				t.Errorf("reason = %q, want %q", verdict.Reason, tt.want)
			}
		})
	}
}

func TestDetectBlockPage_OrdinaryContent(t *testing.T) {
	html := "<html><body><article>A perfectly normal article about cooking pasta.</article></body></html>"
	if verdict := DetectBlockPage(html); verdict != nil {
		t.Errorf("ordinary content should yield no verdict, got %q", verdict.Reason)
	}
}

func TestDetectBlockPage_CaptchaBeatsWAF(t *testing.T) {
	// A page carrying both a CAPTCHA widget and a generic deny phrase must
	// classify by the more specific rule.
	html := `<h1>Access denied</h1><div class="g-recaptcha"></div>`
	verdict := DetectBlockPage(html)
	if verdict == nil || verdict.Reason != "captcha" {
		t.Errorf("captcha + waf phrases should classify as captcha, got %v", verdict)
	}
}

func TestDetectBlockPage_CloudflareBeatsCaptcha(t *testing.T) {
	// Cloudflare challenge pages embed CAPTCHA widgets; the challenge rule
	// has priority.
	html := `<title>Just a moment...</title><div class="g-recaptcha"></div>`
	verdict := DetectBlockPage(html)
	if verdict == nil || verdict.Reason != "cloudflare" {
		t.Errorf("challenge + captcha should classify as cloudflare, got %v", verdict)
	}
}
