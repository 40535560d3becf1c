package rod_test

import (
	"context"
	"testing"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Session implements scrapemd.Session.
var _ scrapemd.Session = (*rod.Session)(nil)

func TestSession_Fetch_BeforeStart_ReturnsUnavailable(t *testing.T) {
	t.Parallel()

	s := rod.NewSession(t.TempDir())

	_, err := s.Fetch(context.Background(), "https://example.com")

	require.Error(t, err)
	assert.Equal(t, scrapemd.EUNAVAILABLE, scrapemd.ErrorCode(err))
}

func TestSession_Healthy_BeforeStart_ReturnsUnavailable(t *testing.T) {
	t.Parallel()

	s := rod.NewSession(t.TempDir())

	err := s.Healthy(context.Background())

	require.Error(t, err)
	assert.Equal(t, scrapemd.EUNAVAILABLE, scrapemd.ErrorCode(err))
}

func TestSession_Stop_BeforeStart_IsNoOp(t *testing.T) {
	t.Parallel()

	s := rod.NewSession(t.TempDir())

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestSession_Start_CanceledContext(t *testing.T) {
	t.Parallel()

	s := rod.NewSession(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
