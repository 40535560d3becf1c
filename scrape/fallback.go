// Package scrape orchestrates URL scraping: content-class dispatch, the
// webpage pipeline (fetch, extract, convert), and the daemon-or-ephemeral
// fallback policy for obtaining rendered HTML.
package scrape

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akarpinski/scrapemd"
)

// Path tags which route produced a fetch result.
type Path string

// Fetch paths. PathDaemon means the shared daemon session served the
// request; PathEphemeral means a one-shot browser was launched locally.
const (
	PathDaemon    Path = "daemon"
	PathEphemeral Path = "ephemeral"
)

// DaemonScraper requests rendered HTML from a running daemon.
// *daemon.Client implements it.
type DaemonScraper interface {
	Scrape(ctx context.Context, url string) (html string, err error)
}

// FetchResult is the tagged outcome of a fallback fetch. When Path is
// PathEphemeral, DaemonErr records why the daemon path was not used.
type FetchResult struct {
	HTML      string
	Path      Path
	DaemonErr error
}

// Ensure FallbackFetcher implements scrapemd.Fetcher at compile time.
var _ scrapemd.Fetcher = (*FallbackFetcher)(nil)

// FallbackFetcher fetches rendered HTML through the daemon, transparently
// falling back to a one-shot ephemeral browser when the daemon cannot be
// started, cannot be reached, or fails the request. The end-to-end fetch
// fails only when both paths fail, and the error carries both causes.
type FallbackFetcher struct {
	// Lifecycle auto-starts the daemon before the daemon path is tried.
	// May be nil, in which case the daemon is probed as-is.
	Lifecycle scrapemd.Lifecycle

	// Daemon requests HTML over the daemon socket.
	Daemon DaemonScraper

	// NewEphemeral creates the one-shot browser for the fallback path.
	// The instance is closed within the same call.
	NewEphemeral func() (scrapemd.Fetcher, error)

	Logger *slog.Logger
}

// FetchPage obtains rendered HTML for url, tagging which path served it.
func (f *FallbackFetcher) FetchPage(ctx context.Context, url string) (*FetchResult, error) {
	html, daemonErr := f.tryDaemon(ctx, url)
	if daemonErr == nil {
		return &FetchResult{HTML: html, Path: PathDaemon}, nil
	}

	f.logf("daemon path failed, falling back to ephemeral browser", "url", url, "err", daemonErr)

	eph, err := f.NewEphemeral()
	if err != nil {
		return nil, fmt.Errorf("scrape failed on both paths: daemon: %v; launching fallback browser: %w", daemonErr, err)
	}
	defer eph.Close()

	html, err = eph.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("scrape failed on both paths: daemon: %v; fallback fetch: %w", daemonErr, err)
	}

	return &FetchResult{HTML: html, Path: PathEphemeral, DaemonErr: daemonErr}, nil
}

// Fetch implements scrapemd.Fetcher over FetchPage, discarding the path tag.
func (f *FallbackFetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := f.FetchPage(ctx, url)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// Close is a no-op: ephemeral fetchers are closed per call and the daemon
// session belongs to the daemon process.
func (f *FallbackFetcher) Close() error {
	return nil
}

func (f *FallbackFetcher) tryDaemon(ctx context.Context, url string) (string, error) {
	if f.Daemon == nil {
		return "", scrapemd.Errorf(scrapemd.EUNAVAILABLE, "no daemon client configured")
	}
	if f.Lifecycle != nil {
		if err := f.Lifecycle.EnsureRunning(ctx); err != nil {
			return "", err
		}
	}
	return f.Daemon.Scrape(ctx, url)
}

func (f *FallbackFetcher) logf(msg string, args ...any) {
	if f.Logger != nil {
		f.Logger.Warn(msg, args...)
	}
}
