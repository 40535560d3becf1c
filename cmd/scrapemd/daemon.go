package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/daemon"
	"github.com/akarpinski/scrapemd/rod"
)

// Run executes the daemon serve command: a foreground daemon process
// owning the persistent browser session.
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config.Daemon

	// Refuse to start a second daemon on the same socket.
	probeCtx, cancel := context.WithTimeout(deps.Ctx, 2*time.Second)
	defer cancel()
	if hs, err := daemon.NewClient(cfg.SocketPath).Health(probeCtx); err == nil && hs.Running {
		err := scrapemd.Errorf(scrapemd.ECONFLICT, "daemon already running (PID %d)", hs.PID)
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}

	logger, closeLog, err := daemonLogger(cfg.LogsDir, deps.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	rec := &scrapemd.DaemonRecord{
		PID:        os.Getpid(),
		SocketPath: cfg.SocketPath,
		StartedAt:  time.Now(),
	}
	if err := os.MkdirAll(filepath.Dir(cfg.RecordPath), 0755); err != nil {
		return err
	}
	if err := daemon.WriteRecord(cfg.RecordPath, rec); err != nil {
		return err
	}
	defer removeOwnRecord(cfg.RecordPath)

	session := rod.NewSession(cfg.ProfileDir,
		rod.WithDebugPort(cfg.DebugPort),
		rod.WithHeadless(c.Headless),
	)

	srv := daemon.NewServer(session, cfg.SocketPath,
		daemon.WithLogger(logger),
		daemon.WithScrapeTimeout(cfg.ScrapeTimeout()),
		daemon.WithDomainLimiter(daemon.NewDomainLimiter(1.0)),
	)

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("daemon starting", "socket", cfg.SocketPath, "pid", rec.PID)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}
	return nil
}

// Run executes the daemon status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	hs, err := deps.Lifecycle.Status(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}

	if hs.Running {
		fmt.Fprintf(deps.Stdout, "Daemon is running (PID %d, up %s)\n",
			hs.PID, (time.Duration(hs.UptimeSeconds) * time.Second).String())
		return nil
	}
	if hs.PID != 0 {
		fmt.Fprintf(deps.Stdout, "Daemon is not running (stale record for PID %d)\n", hs.PID)
		return nil
	}
	fmt.Fprintln(deps.Stdout, "Daemon is not running")
	return nil
}

// Run executes the daemon stop command.
func (c *StopCmd) Run(deps *Dependencies) error {
	hs, err := deps.Lifecycle.Status(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}
	if !hs.Running && hs.PID == 0 {
		fmt.Fprintln(deps.Stdout, "Daemon is not running")
		return nil
	}

	if err := deps.Lifecycle.Stop(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapemd.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Stopped daemon (PID %d)\n", hs.PID)
	return nil
}

// daemonLogger returns a JSON logger writing to <logsDir>/daemon.log,
// falling back to stderr when the log file cannot be opened.
func daemonLogger(logsDir string, stderr io.Writer) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(filepath.Join(logsDir, "daemon.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.NewJSONHandler(stderr, nil)), func() {}, nil
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { _ = f.Close() }, nil
}

// removeOwnRecord deletes the daemon record only if it still points at
// this process, so a replacement daemon's record survives our shutdown.
func removeOwnRecord(path string) {
	rec, err := daemon.ReadRecord(path)
	if err != nil || rec.PID != os.Getpid() {
		return
	}
	_ = daemon.RemoveRecord(path)
}
