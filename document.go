package scrapemd

import (
	"context"
	"net/url"
	"time"
)

// Source values recorded in document metadata headers.
const (
	SourceWeb     = "web"
	SourceYouTube = "youtube"
	SourcePDF     = "pdf"
)

// Document is a scraped page normalized to markdown.
type Document struct {
	URL         string
	Title       string
	Source      string // SourceWeb, SourceYouTube, or SourcePDF
	Markdown    string
	ContentHash string // hash of Markdown, used for idempotent writes
	FetchedAt   time.Time

	// Extra holds source-specific metadata header fields
	// (e.g. video_id, duration for videos).
	Extra map[string]string
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.Source == "" {
		return Errorf(EINVALID, "document source required")
	}
	return nil
}

// Scraper turns a URL of one content class into a normalized Document.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Document, error)
}

// DocumentWriter persists documents as markdown files.
type DocumentWriter interface {
	// WriteDocument writes the document and returns the path it was
	// written to.
	WriteDocument(ctx context.Context, doc *Document) (string, error)
}

// IsAbsoluteURL reports whether raw parses as an absolute http(s) URL.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
