// Package slog provides logging decorators for the scraping interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/akarpinski/scrapemd"
)

// Ensure LoggingScraper implements scrapemd.Scraper.
var _ scrapemd.Scraper = (*LoggingScraper)(nil)

// LoggingScraper wraps a Scraper with info logging of every scrape.
type LoggingScraper struct {
	next   scrapemd.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next scrapemd.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper, logging outcome and duration.
func (s *LoggingScraper) Scrape(ctx context.Context, url string) (*scrapemd.Document, error) {
	begin := time.Now()
	doc, err := s.next.Scrape(ctx, url)
	if err != nil {
		s.logger.Error("scrape failed",
			"url", url,
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}
	s.logger.Info("scraped",
		"url", url,
		"title", doc.Title,
		"source", doc.Source,
		"duration", time.Since(begin),
	)
	return doc, nil
}

// Ensure LoggingWriter implements scrapemd.DocumentWriter.
var _ scrapemd.DocumentWriter = (*LoggingWriter)(nil)

// LoggingWriter wraps a DocumentWriter with info logging of writes.
type LoggingWriter struct {
	next   scrapemd.DocumentWriter
	logger *slog.Logger
}

// NewLoggingWriter creates a new LoggingWriter.
func NewLoggingWriter(next scrapemd.DocumentWriter, logger *slog.Logger) *LoggingWriter {
	return &LoggingWriter{next: next, logger: logger}
}

// WriteDocument delegates to the wrapped writer, logging the path written.
func (w *LoggingWriter) WriteDocument(ctx context.Context, doc *scrapemd.Document) (string, error) {
	path, err := w.next.WriteDocument(ctx, doc)
	if err != nil {
		w.logger.Error("write failed", "url", doc.URL, "error", err)
		return "", err
	}
	w.logger.Info("wrote document", "url", doc.URL, "path", path)
	return path, nil
}
