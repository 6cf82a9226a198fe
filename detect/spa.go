package detect

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	// minExtractedLen is the content length above which a page never
	// needs rendering — the extractor already found enough.
	minExtractedLen = 100

	// maxShellTextLen is the visible body text length below which a page
	// with SPA markers and scripts is considered an empty shell.
	maxShellTextLen = 200
)

// NeedsJavaScript decides whether escalating to script execution is worth
// the cost. It returns false when extracted content is already sufficient,
// false for block pages (rendering cannot help past a block), and true only
// when the page looks like an unrendered application shell: an SPA root
// container, at least one script tag, and almost no visible body text.
func NeedsJavaScript(rawHTML string, extractedLen int) bool {
	if extractedLen > minExtractedLen {
		return false
	}

	if DetectBlockPage(rawHTML) != nil {
		return false
	}

	lower := strings.ToLower(rawHTML)

	hasSPAMarker := false
	for _, marker := range spaMarkers {
		if strings.Contains(lower, marker) {
			hasSPAMarker = true
			break
		}
	}
	if !hasSPAMarker {
		return false
	}

	if !strings.Contains(lower, "<script") {
		return false
	}

	return len(VisibleBodyText(rawHTML)) < maxShellTextLen
}

// VisibleBodyText extracts the visible text from within <body>, stripping
// all tags and <script>/<style>/<noscript> content. Used for heuristic
// analysis only.
func VisibleBodyText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(buf.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
