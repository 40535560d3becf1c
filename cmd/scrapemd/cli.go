package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/akarpinski/scrapemd"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Config     *scrapemd.Config
	ConfigPath string
	Logger     *slog.Logger
	Scraper    scrapemd.Scraper
	Writer     scrapemd.DocumentWriter
	Lifecycle  scrapemd.Lifecycle
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape ScrapeCmd `cmd:"" help:"Scrape a URL and save it as markdown"`
	Daemon DaemonCmd `cmd:"" help:"Manage the background scrape daemon"`
	Init   InitCmd   `cmd:"" help:"Create the default config file"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL    string `arg:"" help:"URL to scrape"`
	Output string `short:"o" help:"Output directory (default: from config)"`
}

// DaemonCmd groups the daemon management subcommands.
type DaemonCmd struct {
	Serve  ServeCmd  `cmd:"" help:"Run the daemon in the foreground"`
	Status StatusCmd `cmd:"" help:"Check daemon status"`
	Stop   StopCmd   `cmd:"" help:"Stop a running daemon"`
}

// ServeCmd is the "daemon serve" subcommand.
type ServeCmd struct {
	Headless bool `help:"Run the browser headless (no visible window for logins)"`
}

// StatusCmd is the "daemon status" subcommand.
type StatusCmd struct{}

// StopCmd is the "daemon stop" subcommand.
type StopCmd struct{}

// InitCmd is the "init" subcommand.
type InitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing config file"`
}
