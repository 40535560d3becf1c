package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/akarpinski/scrapemd"
)

// Ensure LoggingFetcher implements scrapemd.Fetcher.
var _ scrapemd.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   scrapemd.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next scrapemd.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingSession implements scrapemd.Session.
var _ scrapemd.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with debug logging.
type LoggingSession struct {
	next   scrapemd.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next scrapemd.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Start logs the session launch and delegates to the wrapped session.
func (s *LoggingSession) Start(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("session start", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return s.next.Start(ctx)
}

// Fetch logs the navigation and delegates to the wrapped session.
func (s *LoggingSession) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("session fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Fetch(ctx, url)
}

// Healthy delegates to the wrapped session.
func (s *LoggingSession) Healthy(ctx context.Context) error {
	return s.next.Healthy(ctx)
}

// Stop logs the shutdown and delegates to the wrapped session.
func (s *LoggingSession) Stop() (err error) {
	defer func() {
		s.logger.Info("session stop", "err", err)
	}()
	return s.next.Stop()
}
