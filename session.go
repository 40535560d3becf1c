package scrapemd

import "context"

// Session owns a single persistent browser process bound to a durable
// profile directory, so cookies and login state survive across scrapes.
// Exactly one Session instance exists per daemon process; it is never
// shared across processes except indirectly through the on-disk profile
// directory, which must not be opened by two browsers concurrently.
type Session interface {
	// Start launches the browser with the configured profile directory and
	// remote debugging port. Returns EUNAVAILABLE if the port is bound by a
	// foreign process or the profile is locked by another browser.
	Start(ctx context.Context) error

	// Fetch navigates to the URL in a fresh page within the shared session
	// and returns the rendered HTML once the load settles. Navigation
	// mutates shared session state (cookies, storage) observable by
	// subsequent calls.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Healthy reports whether the browser connection is alive without
	// performing any navigation.
	Healthy(ctx context.Context) error

	// Stop terminates the browser process and releases the profile lock.
	// Stop is idempotent.
	Stop() error
}
