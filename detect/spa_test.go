package detect

import (
	"strings"
	"testing"
)

const spaShell = `<html><head><script src="/static/app.js"></script></head>` +
	`<body><div id="root"></div></body></html>`

func TestNeedsJavaScript_SPAShell(t *testing.T) {
	if !NeedsJavaScript(spaShell, 0) {
		t.Error("empty SPA shell with script tag should need JavaScript")
	}
}

func TestNeedsJavaScript_ContentSuffices(t *testing.T) {
	// Extracted content above the threshold always wins, whatever the HTML
	// looks like.
	if NeedsJavaScript(spaShell, 101) {
		t.Error("extracted content > 100 chars should never escalate")
	}
}

func TestNeedsJavaScript_BlockPageNeverEscalates(t *testing.T) {
	html := `<html><head><title>Just a moment...</title><script src="/cdn-cgi/challenge.js"></script></head>` +
		`<body><div id="root"></div></body></html>`
	if NeedsJavaScript(html, 0) {
		t.Error("cloudflare challenge page should not escalate even with SPA markers")
	}
}

func TestNeedsJavaScript_NoScriptTag(t *testing.T) {
	html := `<html><body><div id="root"></div></body></html>`
	if NeedsJavaScript(html, 0) {
		t.Error("SPA marker without script tags should not escalate")
	}
}

func TestNeedsJavaScript_ContentHeavyPageWithScripts(t *testing.T) {
	// Ordinary articles embed scripts too; enough visible text means no
	// escalation even when an SPA-ish marker is present.
	body := strings.Repeat("Plenty of server-rendered words here. ", 20)
	html := `<html><head><script src="/analytics.js"></script></head>` +
		`<body><div id="root"></div><article>` + body + `</article></body></html>`
	if NeedsJavaScript(html, 0) {
		t.Error("content-heavy page should not escalate")
	}
}

func TestNeedsJavaScript_NoSPAMarker(t *testing.T) {
	html := `<html><head><script src="/app.js"></script></head><body><div id="main"></div></body></html>`
	if NeedsJavaScript(html, 0) {
		t.Error("page without SPA markers should not escalate")
	}
}

func TestVisibleBodyText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"strips tags",
			"<html><body><p>hello</p> <b>world</b></body></html>",
			"hello world",
		},
		{
			"skips script content",
			"<html><body><script>var x = 'invisible';</script>visible</body></html>",
			"visible",
		},
		{
			"skips style and noscript",
			"<html><body><style>.a{}</style><noscript>enable js</noscript>text</body></html>",
			"text",
		},
		{
			"head text excluded",
			"<html><head><title>The Title</title></head><body>body text</body></html>",
			"body text",
		},
		{
			"empty body",
			`<html><body><div id="root"></div></body></html>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleBodyText(tt.html)
			if got != tt.want {
				t.Errorf("VisibleBodyText = %q, want %q", got, tt.want)
			}
		})
	}
}
