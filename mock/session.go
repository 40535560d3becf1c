package mock

import (
	"context"

	"github.com/akarpinski/scrapemd"
)

var _ scrapemd.Session = (*Session)(nil)

// Session is a mock implementation of scrapemd.Session.
type Session struct {
	StartFn   func(ctx context.Context) error
	FetchFn   func(ctx context.Context, url string) (string, error)
	HealthyFn func(ctx context.Context) error
	StopFn    func() error
}

func (s *Session) Start(ctx context.Context) error {
	if s.StartFn == nil {
		return nil
	}
	return s.StartFn(ctx)
}

func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	return s.FetchFn(ctx, url)
}

func (s *Session) Healthy(ctx context.Context) error {
	if s.HealthyFn == nil {
		return nil
	}
	return s.HealthyFn(ctx)
}

func (s *Session) Stop() error {
	if s.StopFn == nil {
		return nil
	}
	return s.StopFn()
}
