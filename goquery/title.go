// Package goquery recovers page metadata straight from raw HTML. The
// content extractors usually supply a title from page metadata; this
// package is the last resort when they come back empty.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/akarpinski/scrapemd"
)

// TitleFromHTML returns the best available page title from raw HTML,
// preferring og:title over the <title> element. Returns "" when the page
// declares no title at all.
func TitleFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", scrapemd.Errorf(scrapemd.EINVALID, "failed to parse HTML: %v", err)
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og, nil
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// MetaDescription returns the page's meta description, or "" if absent.
func MetaDescription(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", scrapemd.Errorf(scrapemd.EINVALID, "failed to parse HTML: %v", err)
	}

	if d, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(d), nil
	}
	if d, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(d), nil
	}
	return "", nil
}
