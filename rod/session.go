package rod

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/akarpinski/scrapemd"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultDebugPort is the browser remote debugging port used when none is
// configured.
const DefaultDebugPort = 9222

// Ensure Session implements scrapemd.Session at compile time.
var _ scrapemd.Session = (*Session)(nil)

// Session owns a persistent browser process bound to a durable profile
// directory, so login state and cookies survive across scrapes and daemon
// restarts. The profile directory must not be opened by another browser
// concurrently; Chrome enforces this with its own profile lock, which
// Start surfaces as a start failure.
//
// Session is safe for concurrent use, but callers are expected to bound
// navigation concurrency themselves (the daemon serializes scrapes).
type Session struct {
	profileDir string
	debugPort  int
	headless   bool

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebugPort sets the browser remote debugging port.
// Defaults to DefaultDebugPort if not specified.
func WithDebugPort(port int) SessionOption {
	return func(s *Session) {
		s.debugPort = port
	}
}

// WithHeadless controls whether the session browser runs headless.
// The session defaults to headful so users can log in to sites through it;
// the persisted profile then carries that state into scrapes.
func WithHeadless(headless bool) SessionOption {
	return func(s *Session) {
		s.headless = headless
	}
}

// NewSession creates a Session bound to the given profile directory.
// The browser is not launched until Start is called.
func NewSession(profileDir string, opts ...SessionOption) *Session {
	s := &Session{
		profileDir: profileDir,
		debugPort:  DefaultDebugPort,
		headless:   false,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the browser with the configured profile directory and
// remote debugging port. Start is a no-op if the session is already
// running.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.profileDir, 0755); err != nil {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "creating profile directory %q: %v", s.profileDir, err)
	}

	lnchr := launcher.New().
		UserDataDir(s.profileDir).
		Set("remote-debugging-port", strconv.Itoa(s.debugPort)).
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(s.headless)

	u, err := lnchr.Launch()
	if err != nil {
		// Launch fails when the debug port is bound by a foreign process
		// or another browser holds the profile lock.
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE,
			"starting browser session (port %d, profile %q): %v", s.debugPort, s.profileDir, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "connecting to browser session: %v", err)
	}

	s.browser = browser
	s.launcher = lnchr
	return nil
}

// Fetch navigates to the URL in a fresh page within the shared session and
// returns the rendered HTML. The page is closed afterwards; session state
// (cookies, storage) persists.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()

	if browser == nil {
		return "", scrapemd.Errorf(scrapemd.EUNAVAILABLE, "browser session not started")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Healthy reports whether the browser connection is alive. It issues a
// version query over the existing connection; no navigation happens.
func (s *Session) Healthy(ctx context.Context) error {
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()

	if browser == nil {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "browser session not started")
	}

	if _, err := browser.Context(ctx).Version(); err != nil {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "browser connection lost: %v", err)
	}
	return nil
}

// Stop terminates the browser process and releases the profile lock.
// Stop is idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return nil
	}

	err := s.browser.Close()
	s.launcher.Kill()
	s.browser = nil
	s.launcher = nil
	return err
}
