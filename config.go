package scrapemd

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds application configuration. Values come from in-code defaults
// merged with the user's config file (see the yaml package).
type Config struct {
	// OutputDir is where scraped markdown files are written.
	OutputDir string `yaml:"output_dir"`

	Daemon DaemonConfig `yaml:"daemon"`
}

// DaemonConfig configures the background scrape daemon and its browser session.
type DaemonConfig struct {
	// SocketPath is the unix socket the daemon serves on.
	SocketPath string `yaml:"socket_path"`

	// RecordPath is where the daemon record (PID, socket, start time) lives.
	RecordPath string `yaml:"record_path"`

	// ProfileDir is the browser profile directory. Cookies and login state
	// persist here across daemon restarts.
	ProfileDir string `yaml:"profile_dir"`

	// LogsDir is where the daemon writes its log file.
	LogsDir string `yaml:"logs_dir"`

	// DebugPort is the browser remote debugging port.
	DebugPort int `yaml:"debug_port"`

	// ScrapeTimeoutSeconds bounds each scrape request server-side.
	ScrapeTimeoutSeconds int `yaml:"scrape_timeout_seconds"`
}

// ScrapeTimeout returns the per-request scrape bound as a duration.
func (c DaemonConfig) ScrapeTimeout() time.Duration {
	return time.Duration(c.ScrapeTimeoutSeconds) * time.Second
}

// DefaultConfig returns the configuration used when no config file exists.
// Data lives under ~/.local/share/scrapemd, output under ~/Documents/scraped.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".local", "share", "scrapemd")

	return &Config{
		OutputDir: filepath.Join(home, "Documents", "scraped"),
		Daemon: DaemonConfig{
			SocketPath:           filepath.Join(dataDir, "scrapemd.sock"),
			RecordPath:           filepath.Join(dataDir, "daemon.json"),
			ProfileDir:           filepath.Join(dataDir, "chrome_profile"),
			LogsDir:              filepath.Join(dataDir, "logs"),
			DebugPort:            9222,
			ScrapeTimeoutSeconds: 60,
		},
	}
}

// DefaultConfigPath returns the path of the user's config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "scrapemd", "config.yml")
}
