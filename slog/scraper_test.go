package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/mock"
	appslog "github.com/akarpinski/scrapemd/slog"
)

func TestLoggingScraper_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("logs successful scrape with duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Scraper{
			ScrapeFn: func(ctx context.Context, url string) (*scrapemd.Document, error) {
				return &scrapemd.Document{URL: url, Title: "A Page", Source: scrapemd.SourceWeb}, nil
			},
		}

		s := appslog.NewLoggingScraper(inner, logger)
		doc, err := s.Scrape(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, "A Page", doc.Title)
		output := buf.String()
		assert.Contains(t, output, "scraped")
		assert.Contains(t, output, "url=https://example.com")
		assert.Contains(t, output, "source=web")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failure and propagates error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Scraper{
			ScrapeFn: func(ctx context.Context, url string) (*scrapemd.Document, error) {
				return nil, scrapemd.Errorf(scrapemd.ETIMEOUT, "navigation timed out")
			},
		}

		s := appslog.NewLoggingScraper(inner, logger)
		_, err := s.Scrape(context.Background(), "https://example.com")

		require.Error(t, err)
		assert.Equal(t, scrapemd.ETIMEOUT, scrapemd.ErrorCode(err))
		assert.Contains(t, buf.String(), "scrape failed")
	})
}

func TestLoggingWriter_WriteDocument(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.DocumentWriter{
		WriteDocumentFn: func(ctx context.Context, doc *scrapemd.Document) (string, error) {
			return "/out/A_Page.md", nil
		},
	}

	w := appslog.NewLoggingWriter(inner, logger)
	path, err := w.WriteDocument(context.Background(), &scrapemd.Document{
		URL:    "https://example.com",
		Source: scrapemd.SourceWeb,
	})

	require.NoError(t, err)
	assert.Equal(t, "/out/A_Page.md", path)
	assert.Contains(t, buf.String(), "wrote document")
	assert.Contains(t, buf.String(), "path=/out/A_Page.md")
}
