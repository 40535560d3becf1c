package daemon_test

import (
	"context"
	"testing"
	"time"

	"github.com/akarpinski/scrapemd/daemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_ThrottlesSameDomain(t *testing.T) {
	t.Parallel()

	limiter := daemon.NewDomainLimiter(10.0) // 100ms between requests

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "example.com"))

	begin := time.Now()
	require.NoError(t, limiter.Wait(ctx, "example.com"))

	assert.GreaterOrEqual(t, time.Since(begin), 50*time.Millisecond)
}

func TestDomainLimiter_DomainsAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := daemon.NewDomainLimiter(1.0)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "example.com"))

	// A different domain must not be throttled by the first.
	begin := time.Now()
	require.NoError(t, limiter.Wait(ctx, "example.org"))

	assert.Less(t, time.Since(begin), 500*time.Millisecond)
}

func TestDomainLimiter_CanceledContext(t *testing.T) {
	t.Parallel()

	limiter := daemon.NewDomainLimiter(0.1) // 10s between requests

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "example.com"))

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "example.com")

	require.Error(t, err)
}
