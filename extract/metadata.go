package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata holds article fields read from <meta> tags.
type Metadata struct {
	Author    string
	Published string
}

// authorMetaNames and publishedMetaNames are checked in order; the first
// non-empty value wins.
var (
	authorMetaNames    = []string{"author", "article:author", "twitter:creator"}
	publishedMetaNames = []string{
		"article:published_time",
		"og:published_time",
		"date",
		"publish-date",
		"dc.date.issued",
	}
)

// ParseMetadata reads author and publish-date hints from meta tags. It is
// best-effort: malformed HTML yields empty fields.
func ParseMetadata(rawHTML string) Metadata {
	var meta Metadata

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return meta
	}

	meta.Author = firstMetaContent(doc, authorMetaNames)
	meta.Published = firstMetaContent(doc, publishedMetaNames)

	if meta.Published == "" {
		// <time datetime="..."> is common on article pages.
		if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			meta.Published = strings.TrimSpace(dt)
		}
	}

	return meta
}

// firstMetaContent returns the content of the first meta tag whose name or
// property attribute matches one of names (case-insensitive).
func firstMetaContent(doc *goquery.Document, names []string) string {
	for _, name := range names {
		var found string
		doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			key, _ := s.Attr("name")
			if key == "" {
				key, _ = s.Attr("property")
			}
			if !strings.EqualFold(key, name) {
				return true
			}
			if content, ok := s.Attr("content"); ok {
				found = strings.TrimSpace(content)
			}
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}
