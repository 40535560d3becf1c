package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/akarpinski/scrapemd"
)

// Ensure WebScraper implements scrapemd.Scraper at compile time.
var _ scrapemd.Scraper = (*WebScraper)(nil)

// WebScraper turns a webpage URL into a markdown Document: fetch rendered
// HTML, extract the main content, convert it to markdown.
type WebScraper struct {
	Fetcher   scrapemd.Fetcher
	Extractor scrapemd.Extractor

	// Fallback is tried when Extractor fails or yields no content.
	// Optional.
	Fallback scrapemd.Extractor

	// RecoverTitle recovers a title straight from the raw HTML when the
	// extractors yield none. Optional.
	RecoverTitle func(html string) (string, error)

	// MetaDescription reads the page's meta description from the raw
	// HTML; when present it is recorded in the document extras. Optional.
	MetaDescription func(html string) (string, error)

	Converter scrapemd.Converter
	Logger    *slog.Logger

	// Now is the clock for FetchedAt. Defaults to time.Now.
	Now func() time.Time
}

// Scrape fetches url and produces a SourceWeb document.
func (s *WebScraper) Scrape(ctx context.Context, url string) (*scrapemd.Document, error) {
	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	res := s.extract(html)
	if res.ContentHTML == "" {
		return nil, scrapemd.Errorf(scrapemd.EINVALID, "no extractable content at %s", url)
	}

	title := res.Title
	if title == "" && s.RecoverTitle != nil {
		if t, err := s.RecoverTitle(html); err == nil {
			title = t
		}
	}

	md, err := s.Converter.Convert(res.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", url, err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return nil, scrapemd.Errorf(scrapemd.EINVALID, "conversion produced no markdown for %s", url)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	doc := &scrapemd.Document{
		URL:         url,
		Title:       title,
		Source:      scrapemd.SourceWeb,
		Markdown:    md,
		ContentHash: ContentHash(md),
		FetchedAt:   now(),
	}
	if s.MetaDescription != nil {
		if desc, err := s.MetaDescription(html); err == nil && desc != "" {
			doc.Extra = map[string]string{"description": desc}
		}
	}
	return doc, nil
}

// extract runs the primary extractor, falling back when it errors or
// returns empty content. A nil result is never returned.
func (s *WebScraper) extract(html string) *scrapemd.ExtractResult {
	res, err := s.Extractor.Extract(html)
	if err != nil || res == nil || res.ContentHTML == "" {
		if err != nil && s.Logger != nil {
			s.Logger.Warn("primary extraction failed", "err", err)
		}
		if s.Fallback == nil {
			if res == nil {
				res = &scrapemd.ExtractResult{}
			}
			return res
		}
		fres, ferr := s.Fallback.Extract(html)
		if ferr != nil || fres == nil {
			if res == nil {
				res = &scrapemd.ExtractResult{}
			}
			return res
		}
		// Keep the primary title if the fallback has none.
		if fres.Title == "" && res != nil {
			fres.Title = res.Title
		}
		return fres
	}
	return res
}

// ContentHash returns the hex digest used for idempotent document writes.
func ContentHash(markdown string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(markdown))
}
