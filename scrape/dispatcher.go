package scrape

import (
	"context"

	"github.com/akarpinski/scrapemd"
)

// Ensure Dispatcher implements scrapemd.Scraper at compile time.
var _ scrapemd.Scraper = (*Dispatcher)(nil)

// Dispatcher routes a URL to the scraper for its content class.
type Dispatcher struct {
	Video    scrapemd.Scraper
	Document scrapemd.Scraper
	Webpage  scrapemd.Scraper
}

// Scrape classifies url and delegates to the matching scraper. URLs that
// don't validate as absolute http(s) URLs are rejected before any I/O.
func (d *Dispatcher) Scrape(ctx context.Context, url string) (*scrapemd.Document, error) {
	if !scrapemd.IsAbsoluteURL(url) {
		return nil, scrapemd.Errorf(scrapemd.EINVALID, "url must be absolute: %q", url)
	}

	var s scrapemd.Scraper
	switch scrapemd.Classify(url) {
	case scrapemd.ClassVideo:
		s = d.Video
	case scrapemd.ClassDocument:
		s = d.Document
	default:
		s = d.Webpage
	}
	if s == nil {
		return nil, scrapemd.Errorf(scrapemd.EINTERNAL, "no scraper registered for %s", scrapemd.Classify(url))
	}
	return s.Scrape(ctx, url)
}
