package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/akarpinski/scrapemd"
	"github.com/akarpinski/scrapemd/daemon"
	"github.com/akarpinski/scrapemd/fs"
	"github.com/akarpinski/scrapemd/goquery"
	"github.com/akarpinski/scrapemd/htmltomarkdown"
	"github.com/akarpinski/scrapemd/pdftotext"
	"github.com/akarpinski/scrapemd/readability"
	"github.com/akarpinski/scrapemd/rod"
	"github.com/akarpinski/scrapemd/scrape"
	appslog "github.com/akarpinski/scrapemd/slog"
	"github.com/akarpinski/scrapemd/trafilatura"
	"github.com/akarpinski/scrapemd/yaml"
	"github.com/akarpinski/scrapemd/youtube"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config file path. Set before calling Run().
	ConfigPath string

	// Loaded configuration, available after Run() for tests.
	Config *scrapemd.Config
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:        ctx,
		Stdout:     stdout,
		Stderr:     stderr,
		ConfigPath: m.ConfigPath,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scrapemd"),
		kong.Description("Scrape URLs to markdown files."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scrapemd --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// init must work even when the existing config file is broken.
	if cmd == "init" {
		return kongCtx.Run(deps)
	}

	cfg, err := yaml.LoadConfig(m.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Run 'scrapemd init --force' to rewrite the default config\n")
		return err
	}
	m.Config = cfg
	deps.Config = cfg

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	deps.Logger = logger
	deps.Lifecycle = daemon.NewLifecycle(cfg.Daemon.RecordPath, cfg.Daemon.SocketPath, logger)

	if cmd == "scrape" {
		outputDir := cfg.OutputDir
		if cli.Scrape.Output != "" {
			outputDir = cli.Scrape.Output
		}
		deps.Writer = appslog.NewLoggingWriter(fs.NewWriter(outputDir), logger)
		deps.Scraper = appslog.NewLoggingScraper(m.buildDispatcher(cfg, deps.Lifecycle, logger), logger)
	}

	return kongCtx.Run(deps)
}

// buildDispatcher wires the per-class scrapers behind classification.
// Webpages go through the daemon with transparent ephemeral fallback.
func (m *Main) buildDispatcher(cfg *scrapemd.Config, lc scrapemd.Lifecycle, logger *slog.Logger) *scrape.Dispatcher {
	fetcher := &scrape.FallbackFetcher{
		Lifecycle: lc,
		Daemon:    daemon.NewClient(cfg.Daemon.SocketPath),
		NewEphemeral: func() (scrapemd.Fetcher, error) {
			f, err := rod.NewFetcher()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
		Logger: logger,
	}

	web := &scrape.WebScraper{
		Fetcher:         fetcher,
		Extractor:       trafilatura.NewExtractor(),
		Fallback:        readability.NewExtractor(),
		RecoverTitle:    goquery.TitleFromHTML,
		MetaDescription: goquery.MetaDescription,
		Converter:       htmltomarkdown.NewConverter(),
		Logger:          logger,
	}

	return &scrape.Dispatcher{
		Video:    youtube.NewScraper(youtube.WithLogger(logger)),
		Document: pdftotext.NewScraper(pdftotext.WithLogger(logger)),
		Webpage:  web,
	}
}

func defaultConfigPath() string {
	if path := os.Getenv("SCRAPEMD_CONFIG"); path != "" {
		return path
	}
	return scrapemd.DefaultConfigPath()
}
