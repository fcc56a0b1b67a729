package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "objview.yaml"

// EnvConfig names an environment variable holding a config file path. The
// --config flag takes precedence over it.
const EnvConfig = "OBJVIEW_CONFIG"

// Load builds the effective config: defaults, then the first config file
// found (--config, $OBJVIEW_CONFIG, ./objview.yaml, ConfigDir()/objview.yaml),
// then flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	if path := configSource(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configSource returns the file Load reads, or "" to use defaults only.
// An explicit path is returned even if it does not exist so the caller
// reports it.
func configSource() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return findConfigFile()
}

// findConfigFile returns the first existing objview.yaml in the working
// directory or ConfigDir.
func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user objscene config directory. When the OS
// reports none, a directory under the temp dir is used.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "objscene")
}

// loadFromFile merges a YAML file over cfg. Keys that match no setting are
// an error, so a misspelled option is not silently ignored. An empty file
// leaves cfg unchanged.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
