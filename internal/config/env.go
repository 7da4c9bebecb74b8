package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted after the config files.
const (
	EnvConfig   = "CSDFRAME_CONFIG"
	EnvLogLevel = "CSDFRAME_LOG_LEVEL"
	EnvShell    = "CSDFRAME_SHELL"
	EnvDisplay  = "DISPLAY"
)

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped and variables that are already set
// win over the files.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return err
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%s: failed to load env file: %w", path, err)
		}
	}
	return nil
}

// applyEnv overrides cfg from the environment and returns the source of
// every overridden path. DISPLAY only fills an unset display.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) map[string]Source {
	sources := map[string]Source{}
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
		sources["log_level"] = Source{Kind: SourceEnv, Name: EnvLogLevel}
	}
	if v, ok := get(EnvShell); ok {
		cfg.Shell = ShellMode(strings.ToLower(v))
		sources["shell"] = Source{Kind: SourceEnv, Name: EnvShell}
	}
	if cfg.Display == "" {
		if v, ok := get(EnvDisplay); ok {
			cfg.Display = v
			sources["display"] = Source{Kind: SourceEnv, Name: EnvDisplay}
		}
	}
	return sources
}

// ApplyDisplay exports the configured display so the X connection uses it.
func (c *Config) ApplyDisplay() error {
	if c.Display == "" {
		return nil
	}
	return os.Setenv(EnvDisplay, c.Display)
}
