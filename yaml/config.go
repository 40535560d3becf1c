// Package yaml loads application configuration from the user's config
// file, layered over in-code defaults.
package yaml

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akarpinski/scrapemd"
)

// LoadConfig reads the config file at path and merges it over the
// defaults. A missing file is not an error: the defaults are returned
// as-is. A file that exists but does not parse is EINVALID.
func LoadConfig(path string) (*scrapemd.Config, error) {
	cfg := scrapemd.DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into the defaults so absent keys keep their values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, scrapemd.Errorf(scrapemd.EINVALID, "invalid config file %s: %v", path, err)
	}

	expandConfig(cfg)
	return cfg, nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is ECONFLICT unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return scrapemd.Errorf(scrapemd.ECONFLICT, "config file already exists: %s", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(scrapemd.DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// expandConfig resolves leading ~ in every path-valued field.
func expandConfig(cfg *scrapemd.Config) {
	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.Daemon.SocketPath = expandHome(cfg.Daemon.SocketPath)
	cfg.Daemon.RecordPath = expandHome(cfg.Daemon.RecordPath)
	cfg.Daemon.ProfileDir = expandHome(cfg.Daemon.ProfileDir)
	cfg.Daemon.LogsDir = expandHome(cfg.Daemon.LogsDir)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
