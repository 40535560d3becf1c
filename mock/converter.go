package mock

import "github.com/akarpinski/scrapemd"

var _ scrapemd.Converter = (*Converter)(nil)

// Converter is a mock implementation of scrapemd.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
