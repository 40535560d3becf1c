package mock

import (
	"context"

	"github.com/akarpinski/scrapemd"
)

var _ scrapemd.Lifecycle = (*Lifecycle)(nil)

// Lifecycle is a mock implementation of scrapemd.Lifecycle.
type Lifecycle struct {
	EnsureRunningFn func(ctx context.Context) error
	StatusFn        func(ctx context.Context) (*scrapemd.HealthStatus, error)
	StopFn          func(ctx context.Context) error
}

func (l *Lifecycle) EnsureRunning(ctx context.Context) error {
	if l.EnsureRunningFn == nil {
		return nil
	}
	return l.EnsureRunningFn(ctx)
}

func (l *Lifecycle) Status(ctx context.Context) (*scrapemd.HealthStatus, error) {
	return l.StatusFn(ctx)
}

func (l *Lifecycle) Stop(ctx context.Context) error {
	if l.StopFn == nil {
		return nil
	}
	return l.StopFn(ctx)
}
