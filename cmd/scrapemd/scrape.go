package main

import (
	"fmt"

	"github.com/akarpinski/scrapemd"
)

// Run executes the scrape command: classify the URL, scrape it, write the
// markdown file, and print its path.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	doc, err := deps.Scraper.Scrape(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}

	path, err := deps.Writer.WriteDocument(deps.Ctx, doc)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, path)
	return nil
}
