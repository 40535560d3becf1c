// Package daemon implements the background scrape daemon: an HTTP server on
// a unix socket wrapping a persistent browser session, the lifecycle manager
// that discovers, starts, and stops it through an on-disk record, and the
// socket client used by short-lived invocations.
package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/akarpinski/scrapemd"
)

// DefaultScrapeTimeout bounds a client-side scrape request end to end.
const DefaultScrapeTimeout = 90 * time.Second

// Client talks to a running daemon over its unix socket. The zero value is
// not usable; construct with NewClient.
type Client struct {
	socketPath string
	httpc      *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRequestTimeout sets the overall timeout for scrape requests.
// Defaults to DefaultScrapeTimeout if not specified.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpc.Timeout = d
	}
}

// NewClient creates a Client for the daemon listening on socketPath.
func NewClient(socketPath string, opts ...ClientOption) *Client {
	c := &Client{
		socketPath: socketPath,
		httpc: &http.Client{
			Timeout: DefaultScrapeTimeout,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scrape asks the daemon for the rendered HTML of url. The response is
// always terminal: either HTML or an error, never a partial result.
func (c *Client) Scrape(ctx context.Context, url string) (string, error) {
	body, err := json.Marshal(scrapemd.ScrapeRequest{URL: url})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://scrapemd/scrape", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", scrapemd.Errorf(scrapemd.EUNAVAILABLE, "daemon socket request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", scrapemd.Errorf(scrapemd.EINTERNAL, "daemon returned HTTP %d", resp.StatusCode)
	}

	var sr scrapemd.ScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", scrapemd.Errorf(scrapemd.EINTERNAL, "malformed daemon response: %v", err)
	}

	if !sr.OK {
		if sr.Error == "timeout" {
			return "", scrapemd.Errorf(scrapemd.ETIMEOUT, "daemon scrape timed out for %s", url)
		}
		return "", scrapemd.Errorf(scrapemd.EINTERNAL, "daemon scrape failed: %s", sr.Error)
	}

	return sr.HTML, nil
}

// Health probes the daemon's health endpoint without triggering any
// navigation.
func (c *Client) Health(ctx context.Context) (*scrapemd.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://scrapemd/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, scrapemd.Errorf(scrapemd.EUNAVAILABLE, "daemon not reachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health returned HTTP %d", resp.StatusCode)
	}

	var hs scrapemd.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return nil, scrapemd.Errorf(scrapemd.EINTERNAL, "malformed health response: %v", err)
	}

	return &hs, nil
}
