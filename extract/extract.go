// Package extract wraps the Mozilla Readability algorithm to turn raw HTML
// into LLM-ready markdown with basic article metadata. It is best-effort by
// contract: a page readability cannot handle yields no document, never an
// error the pipeline has to unwind.
package extract

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minTextLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minTextLength = 50

// Document is the structured output of a successful extraction.
type Document struct {
	// Content is the main content converted to markdown.
	Content string

	Title     string
	Author    string
	Published string

	// WordCount counts whitespace-separated words in the plain text.
	WordCount int
}

// Extractor runs readability extraction followed by markdown conversion.
// It is safe for concurrent use.
type Extractor struct {
	conv *markdownConverter
}

// New creates an Extractor with a shared markdown converter.
func New() *Extractor {
	return &Extractor{conv: newMarkdownConverter()}
}

// Extract runs readability on rawHTML and converts the result to markdown.
// The second return value is false when no usable main content was found —
// the caller decides whether that means an empty page or an app shell.
func (e *Extractor) Extract(rawHTML, sourceURL string) (*Document, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("extract: invalid source URL", "url", sourceURL, "error", err)
		return nil, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("extract: readability failed", "url", sourceURL, "error", err)
		return nil, false
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) < minTextLength {
		return nil, false
	}

	markdown, err := e.conv.convert(article.Content, parsedURL.Host)
	if err != nil {
		slog.Warn("extract: markdown conversion failed, using plain text",
			"url", sourceURL, "error", err)
		markdown = text
	}

	doc := &Document{
		Content:   markdown,
		Title:     article.Title,
		Author:    article.Byline,
		WordCount: CountWords(text),
	}

	// Readability rarely surfaces publish dates; fall back to meta tags.
	meta := ParseMetadata(rawHTML)
	if doc.Author == "" {
		doc.Author = meta.Author
	}
	doc.Published = meta.Published

	return doc, true
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
