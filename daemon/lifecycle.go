package daemon

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/akarpinski/scrapemd"
)

// Probe timing defaults. A freshly spawned daemon has to launch a browser,
// so the poll window is generous; each individual probe stays short.
const (
	DefaultProbeTimeout = 1 * time.Second
	DefaultStopWait     = 5 * time.Second
	DefaultStartGrace   = 30 * time.Second
)

// DefaultStartDelays returns the backoff delays used while polling a
// starting daemon's health endpoint.
func DefaultStartDelays() []time.Duration {
	return []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		6400 * time.Millisecond,
	}
}

// Prober checks daemon liveness over the socket. *Client implements it.
type Prober interface {
	Health(ctx context.Context) (*scrapemd.HealthStatus, error)
}

// SpawnFunc starts a detached daemon server process and returns its PID.
type SpawnFunc func(ctx context.Context) (pid int, err error)

// Ensure Lifecycle implements scrapemd.Lifecycle at compile time.
var _ scrapemd.Lifecycle = (*Lifecycle)(nil)

// Lifecycle manages daemon discovery and process control through the record
// file. Fields may be customized before first use; NewLifecycle fills in
// production defaults.
type Lifecycle struct {
	RecordPath string
	SocketPath string

	// Prober checks health over the socket.
	Prober Prober

	// Spawn starts a detached daemon process.
	Spawn SpawnFunc

	// Alive reports whether a PID refers to a live process.
	Alive func(pid int) bool

	// Signal delivers a signal to a PID.
	Signal func(pid int, sig syscall.Signal) error

	// StartDelays is the health-poll backoff schedule after a spawn.
	StartDelays []time.Duration

	// ProbeTimeout bounds each individual health probe.
	ProbeTimeout time.Duration

	// StopWait bounds how long Stop waits for graceful exit before SIGKILL.
	StopWait time.Duration

	// StartGrace is how long after a record's StartedAt the daemon is
	// considered "starting" rather than stale when health does not answer.
	// Without it, an invocation racing a freshly spawned daemon would
	// delete the winner's claim and double-spawn.
	StartGrace time.Duration

	Logger *slog.Logger
}

// NewLifecycle creates a Lifecycle with production defaults: probing over
// the socket with a Client and spawning the current executable's
// "daemon serve" command as a detached process.
func NewLifecycle(recordPath, socketPath string, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		RecordPath:   recordPath,
		SocketPath:   socketPath,
		Prober:       NewClient(socketPath),
		Spawn:        SpawnServer,
		Alive:        processAlive,
		Signal:       syscall.Kill,
		StartDelays:  DefaultStartDelays(),
		ProbeTimeout: DefaultProbeTimeout,
		StopWait:     DefaultStopWait,
		StartGrace:   DefaultStartGrace,
		Logger:       logger,
	}
}

// EnsureRunning guarantees a healthy daemon is serving on the socket.
// A stale record (process gone, or present but not answering health) is
// removed and the start sequence retried exactly once.
func (l *Lifecycle) EnsureRunning(ctx context.Context) error {
	return l.ensureRunning(ctx, true)
}

func (l *Lifecycle) ensureRunning(ctx context.Context, retryOnStale bool) error {
	if l.probe(ctx) == nil {
		return nil
	}

	rec, err := ReadRecord(l.RecordPath)
	if err == nil && time.Since(rec.StartedAt) < l.StartGrace {
		// Another invocation claimed the record moments ago and its daemon
		// is still booting. Converge on it instead of declaring it stale.
		return l.awaitHealthy(ctx)
	}
	if err == nil || scrapemd.ErrorCode(err) == scrapemd.EINVALID {
		// A record exists but the daemon is not answering: stale.
		// Clear it and run the start sequence exactly once.
		l.clearStale(rec)
		if !retryOnStale {
			return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "daemon still unhealthy after stale-record restart")
		}
		l.logf("stale daemon record removed, restarting")
		return l.ensureRunning(ctx, false)
	} else if scrapemd.ErrorCode(err) != scrapemd.ENOTFOUND {
		return err
	}

	return l.start(ctx)
}

// start claims the record file and spawns a daemon. Losing the claim means
// another invocation is starting one; both then converge on health polling.
func (l *Lifecycle) start(ctx context.Context) error {
	claim := &scrapemd.DaemonRecord{
		SocketPath: l.SocketPath,
		StartedAt:  time.Now().UTC(),
	}

	if err := ClaimRecord(l.RecordPath, claim); err != nil {
		if scrapemd.ErrorCode(err) == scrapemd.ECONFLICT {
			l.logf("lost start race, waiting for winner's daemon")
			return l.awaitHealthy(ctx)
		}
		return err
	}

	pid, err := l.Spawn(ctx)
	if err != nil {
		_ = RemoveRecord(l.RecordPath)
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "spawning daemon: %v", err)
	}

	claim.PID = pid
	if err := WriteRecord(l.RecordPath, claim); err != nil {
		// The record still carries PID 0, so nothing else can stop the
		// process we just spawned. Kill it before giving up the claim.
		_ = l.Signal(pid, syscall.SIGKILL)
		_ = RemoveRecord(l.RecordPath)
		return err
	}
	l.logf("daemon spawned", "pid", pid)

	if err := l.awaitHealthy(ctx); err != nil {
		_ = RemoveRecord(l.RecordPath)
		return scrapemd.Errorf(scrapemd.ETIMEOUT, "daemon did not become healthy: %v", err)
	}
	return nil
}

// awaitHealthy polls the health endpoint with bounded backoff.
func (l *Lifecycle) awaitHealthy(ctx context.Context) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := l.probe(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt >= len(l.StartDelays) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.StartDelays[attempt]):
		}
	}
	return lastErr
}

// probe performs a single bounded health check.
func (l *Lifecycle) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.ProbeTimeout)
	defer cancel()

	st, err := l.Prober.Health(ctx)
	if err != nil {
		return err
	}
	if !st.Running {
		return scrapemd.Errorf(scrapemd.EUNAVAILABLE, "daemon reports not running")
	}
	return nil
}

// clearStale removes a stale record, the socket file, and any leftover
// process the record points at.
func (l *Lifecycle) clearStale(rec *scrapemd.DaemonRecord) {
	if rec != nil && rec.PID > 0 && l.Alive(rec.PID) {
		_ = l.Signal(rec.PID, syscall.SIGKILL)
	}
	_ = RemoveRecord(l.RecordPath)
	_ = os.Remove(l.SocketPath)
}

// Status reports daemon liveness without mutating any state.
func (l *Lifecycle) Status(ctx context.Context) (*scrapemd.HealthStatus, error) {
	rec, err := ReadRecord(l.RecordPath)
	if scrapemd.ErrorCode(err) == scrapemd.ENOTFOUND {
		return &scrapemd.HealthStatus{Running: false}, nil
	} else if scrapemd.ErrorCode(err) == scrapemd.EINVALID {
		return &scrapemd.HealthStatus{Running: false}, nil
	} else if err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, l.ProbeTimeout)
	defer cancel()

	st, err := l.Prober.Health(probeCtx)
	if err != nil || !st.Running {
		// Record exists but nothing answers: report stale as not running,
		// keeping the recorded PID for diagnostics.
		return &scrapemd.HealthStatus{Running: false, PID: rec.PID}, nil
	}
	return st, nil
}

// Stop shuts down the recorded daemon: SIGTERM, bounded wait for exit,
// SIGKILL as a last resort. The record and socket are removed regardless of
// whether graceful shutdown succeeded. Stopping an absent daemon is a no-op.
func (l *Lifecycle) Stop(ctx context.Context) error {
	rec, err := ReadRecord(l.RecordPath)
	if scrapemd.ErrorCode(err) == scrapemd.ENOTFOUND {
		return nil
	} else if scrapemd.ErrorCode(err) == scrapemd.EINVALID {
		// Corrupt record: nothing identifiable to signal, just clean up.
		rec = nil
	} else if err != nil {
		return err
	}

	defer func() {
		_ = RemoveRecord(l.RecordPath)
		_ = os.Remove(l.SocketPath)
	}()

	if rec == nil || rec.PID <= 0 || !l.Alive(rec.PID) {
		return nil
	}

	if err := l.Signal(rec.PID, syscall.SIGTERM); err != nil {
		return nil // already gone
	}

	deadline := time.Now().Add(l.StopWait)
	for time.Now().Before(deadline) {
		if !l.Alive(rec.PID) {
			l.logf("daemon stopped", "pid", rec.PID)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	l.logf("daemon did not exit gracefully, killing", "pid", rec.PID)
	_ = l.Signal(rec.PID, syscall.SIGKILL)
	return nil
}

func (l *Lifecycle) logf(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Info(msg, args...)
	}
}

// SpawnServer starts the current executable's "daemon serve" command as a
// detached background process and returns its PID.
func SpawnServer(ctx context.Context) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(exe, "daemon", "serve")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	// Detach: the daemon outlives this invocation.
	_ = cmd.Process.Release()
	return pid, nil
}

// processAlive reports whether pid refers to a live process.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
