package mock

import "github.com/akarpinski/scrapemd"

var _ scrapemd.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of scrapemd.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*scrapemd.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*scrapemd.ExtractResult, error) {
	return e.ExtractFn(html)
}
