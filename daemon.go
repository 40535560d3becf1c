package scrapemd

import (
	"context"
	"time"
)

// ScrapeRequest is sent from a client invocation to the daemon.
type ScrapeRequest struct {
	// URL must be a syntactically valid absolute URL. The daemon does not
	// otherwise validate reachability before attempting the fetch.
	URL string `json:"url"`
}

// Validate returns an error if the request is not well-formed.
func (r *ScrapeRequest) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "url required")
	}
	if !IsAbsoluteURL(r.URL) {
		return Errorf(EINVALID, "url must be absolute: %q", r.URL)
	}
	return nil
}

// ScrapeResponse is the daemon's terminal reply to a ScrapeRequest.
// Exactly one of HTML/Error is populated, depending on OK.
// Clients never receive partial results.
type ScrapeResponse struct {
	OK    bool   `json:"ok"`
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// HealthStatus describes a daemon's liveness.
type HealthStatus struct {
	Running       bool    `json:"running"`
	PID           int     `json:"pid,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds,omitempty"`
}

// DaemonRecord is the on-disk artifact recording a running daemon's
// identity. It is the sole source of truth for "is a daemon running", and
// must always be validated against the live process table and the health
// endpoint before being trusted.
type DaemonRecord struct {
	PID        int       `json:"pid"`
	SocketPath string    `json:"socket_path"`
	StartedAt  time.Time `json:"started_at"`
}

// Lifecycle manages the daemon process: discovery via the record file,
// auto-start of a detached server, and shutdown.
type Lifecycle interface {
	// EnsureRunning guarantees a healthy daemon is serving on the socket,
	// starting one if the record is absent or stale. A stale record is
	// deleted and the start sequence retried exactly once.
	// Returns ETIMEOUT if a freshly started daemon never answers health.
	EnsureRunning(ctx context.Context) error

	// Status reports daemon liveness by reading the record and probing
	// health. Status never mutates state.
	Status(ctx context.Context) (*HealthStatus, error)

	// Stop shuts the recorded daemon down and removes the record.
	// Stopping an already-absent daemon is a no-op, not an error.
	Stop(ctx context.Context) error
}
