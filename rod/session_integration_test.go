//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akarpinski/scrapemd/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartFetchStop(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Session Test</title></head><body>hello</body></html>`))
	}))
	defer srv.Close()

	s := rod.NewSession(t.TempDir(), rod.WithHeadless(true), rod.WithDebugPort(0))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.Healthy(context.Background()))

	html, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "hello")
}

func TestSession_Start_Twice_IsNoOp(t *testing.T) {
	t.Parallel()

	s := rod.NewSession(t.TempDir(), rod.WithHeadless(true), rod.WithDebugPort(0))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.Start(context.Background()))
}

func TestSession_CookiesPersistAcrossFetches(t *testing.T) {
	t.Parallel()

	// First response sets a cookie; second response echoes it back.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("visited"); err == nil {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>cookie=` + c.Value + `</body></html>`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "visited", Value: "yes"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>first visit</body></html>`))
	}))
	defer srv.Close()

	s := rod.NewSession(t.TempDir(), rod.WithHeadless(true), rod.WithDebugPort(0))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	_, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	html, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "cookie=yes")
}
