// Package pdftotext converts remote PDF files to markdown documents by
// shelling out to the pdftotext utility from poppler.
package pdftotext

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/scrape"
)

// DefaultBinary is the converter executable looked up on PATH.
const DefaultBinary = "pdftotext"

// Ensure Scraper implements scrapemd.Scraper at compile time.
var _ scrapemd.Scraper = (*Scraper)(nil)

// Scraper downloads a PDF to a temporary file and converts it to text.
type Scraper struct {
	binary string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBinary overrides the converter executable path.
func WithBinary(bin string) Option {
	return func(s *Scraper) { s.binary = bin }
}

// WithHTTPClient overrides the HTTP client used for the download.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// NewScraper creates a PDF scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		binary: DefaultBinary,
		client: &http.Client{Timeout: 60 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape downloads the PDF at rawURL and converts it to a markdown
// document. The document title falls back to the URL's filename.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*scrapemd.Document, error) {
	tmp, err := os.CreateTemp("", "scrapemd-*.pdf")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := s.download(ctx, rawURL, tmp); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("download PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	text, err := s.convert(ctx, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("convert PDF: %w", err)
	}

	md := strings.TrimSpace(text)
	if md == "" {
		return nil, scrapemd.Errorf(scrapemd.EINVALID, "PDF contains no extractable text: %s", rawURL)
	}
	md += "\n"

	return &scrapemd.Document{
		URL:         rawURL,
		Title:       titleFromURL(rawURL),
		Source:      scrapemd.SourcePDF,
		Markdown:    md,
		ContentHash: scrape.ContentHash(md),
		FetchedAt:   s.now(),
	}, nil
}

func (s *Scraper) download(ctx context.Context, rawURL string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return scrapemd.Errorf(scrapemd.EINVALID, "invalid URL: %v", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "fetch failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "fetch returned status %d", resp.StatusCode)
	}

	_, err = io.Copy(dst, resp.Body)
	return err
}

// convert runs the converter with stdout output ("-" sink), layout
// preserved.
func (s *Scraper) convert(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, s.binary, "-layout", pdfPath, "-")
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", scrapemd.Errorf(scrapemd.EINTERNAL, "%s failed: %s", s.binary, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", scrapemd.Errorf(scrapemd.EUNAVAILABLE, "%s not available: %v", s.binary, err)
	}
	return string(out), nil
}

// titleFromURL derives a readable title from the PDF's filename.
func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	name := path.Base(u.Path)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return rawURL
	}
	return name
}
