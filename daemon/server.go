package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/akarpinski/scrapemd"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Server timing defaults.
const (
	DefaultServerScrapeTimeout = 60 * time.Second
	DefaultShutdownGrace       = 10 * time.Second
)

// Server runs a browser Session behind a request/response loop on a unix
// socket. All scrapes against the single session are strictly serialized
// through a weighted semaphore of size one: concurrent requests queue, and
// navigations never interleave. Failures inside a single scrape never take
// the server down; only a failed session start at boot is fatal.
type Server struct {
	session       scrapemd.Session
	socketPath    string
	logger        *slog.Logger
	scrapeTimeout time.Duration
	shutdownGrace time.Duration
	sem           *semaphore.Weighted
	limiter       *DomainLimiter
	started       time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithScrapeTimeout bounds each scrape request server-side.
// Defaults to DefaultServerScrapeTimeout if not specified.
func WithScrapeTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.scrapeTimeout = d
	}
}

// WithDomainLimiter enables per-domain politeness rate limiting for
// outbound navigations.
func WithDomainLimiter(l *DomainLimiter) ServerOption {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithShutdownGrace bounds how long in-flight requests may finish during
// graceful shutdown. Defaults to DefaultShutdownGrace.
func WithShutdownGrace(d time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownGrace = d
	}
}

// NewServer creates a Server wrapping session, listening on socketPath.
func NewServer(session scrapemd.Session, socketPath string, opts ...ServerOption) *Server {
	s := &Server{
		session:       session,
		socketPath:    socketPath,
		logger:        slog.Default(),
		scrapeTimeout: DefaultServerScrapeTimeout,
		shutdownGrace: DefaultShutdownGrace,
		sem:           semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe starts the browser session and serves requests until ctx
// is canceled, then drains in-flight requests within the grace period,
// stops the session, and removes the socket file.
//
// A session start failure is returned immediately; the server never
// accepts requests without a usable session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.session.Start(ctx); err != nil {
		return err
	}
	defer s.session.Stop()

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return err
	}
	// A previous daemon that died hard leaves its socket file behind.
	_ = os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "listening on %q: %v", s.socketPath, err)
	}
	defer os.Remove(s.socketPath)

	// Local channel; filesystem permissions are the only access control.
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		ln.Close()
		return err
	}

	s.started = time.Now()

	srv := &http.Server{Handler: s.routes()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("daemon serving", "socket", s.socketPath, "pid", os.Getpid())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("forced shutdown after grace period", "err", err)
		_ = srv.Close()
	}
	s.logger.Info("daemon stopped")
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/scrape", s.handleScrape)
	r.Get("/health", s.handleHealth)
	return r
}

// handleScrape serves a single scrape request. The response is always
// terminal: scrape failures are reported as {ok:false} with HTTP 200, never
// as a dropped connection.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	logger := s.logger.With("request_id", reqID)

	var req scrapemd.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		s.respond(w, logger, scrapemd.ScrapeResponse{OK: false, Error: scrapemd.ErrorMessage(err)})
		return
	}

	// The request context doubles as the abandonment signal: a client that
	// times out and closes its connection cancels this context, so the
	// navigation is abandoned instead of leaked.
	ctx, cancel := context.WithTimeout(r.Context(), s.scrapeTimeout)
	defer cancel()

	// Strict serialization: one navigation against the shared session at a
	// time. Queued requests still honor their own deadlines.
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.respond(w, logger, timeoutResponse(err))
		return
	}
	defer s.sem.Release(1)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, domainOf(req.URL)); err != nil {
			s.respond(w, logger, timeoutResponse(err))
			return
		}
	}

	begin := time.Now()
	html, err := s.session.Fetch(ctx, req.URL)
	if err != nil {
		logger.Error("scrape failed", "url", req.URL, "duration", time.Since(begin), "err", err)
		s.respond(w, logger, timeoutResponse(err))
		return
	}

	logger.Info("scrape ok", "url", req.URL, "bytes", len(html), "duration", time.Since(begin))
	s.respond(w, logger, scrapemd.ScrapeResponse{OK: true, HTML: html})
}

// handleHealth reports liveness of the browser session, not just the
// process: a daemon whose browser died must answer Running:false so the
// lifecycle's staleness check can restart it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := scrapemd.HealthStatus{
		Running:       true,
		PID:           os.Getpid(),
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
	if err := s.session.Healthy(r.Context()); err != nil {
		s.logger.Error("health check failed", "err", err)
		status.Running = false
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) respond(w http.ResponseWriter, logger *slog.Logger, resp scrapemd.ScrapeResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("writing response", "err", err)
	}
}

// timeoutResponse maps an error to a terminal scrape response, normalizing
// deadline errors to the wire-level "timeout" marker.
func timeoutResponse(err error) scrapemd.ScrapeResponse {
	if errors.Is(err, context.DeadlineExceeded) || scrapemd.ErrorCode(err) == scrapemd.ETIMEOUT {
		return scrapemd.ScrapeResponse{OK: false, Error: "timeout"}
	}
	return scrapemd.ScrapeResponse{OK: false, Error: err.Error()}
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
