package mock

import (
	"context"

	"github.com/akarpinski/scrapemd"
)

var _ scrapemd.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of scrapemd.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, url string) (*scrapemd.Document, error)
}

func (s *Scraper) Scrape(ctx context.Context, url string) (*scrapemd.Document, error) {
	return s.ScrapeFn(ctx, url)
}
