// Package config provides centralized configuration for the gitfx commands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/freqmod/gitfx/internal/submodule"
	"gopkg.in/yaml.v3"
)

// Config holds settings shared by all commands. Command-line flags that are
// set explicitly take precedence over it.
type Config struct {
	Logrefs    LogrefsConfig    `yaml:"logrefs"`
	Submodsync SubmodsyncConfig `yaml:"submodsync"`
	Log        LogConfig        `yaml:"log"`
}

// LogrefsConfig configures the logrefs command.
type LogrefsConfig struct {
	MaxPrintRefs int  `yaml:"max_print_refs"`
	Remotes      bool `yaml:"remotes"`
	Tags         bool `yaml:"tags"`
}

// SubmodsyncConfig configures the submodsync command.
type SubmodsyncConfig struct {
	ForceCommit bool   `yaml:"force_commit"`
	DirtyCheck  string `yaml:"dirty_check"`
}

// LogConfig configures diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Logrefs:    LogrefsConfig{MaxPrintRefs: 20},
		Submodsync: SubmodsyncConfig{DirtyCheck: string(submodule.DirtyAgainstHead)},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns the config file location: $GITFX_CONFIG, or
// gitfx/config.yaml under the user config directory.
func DefaultPath() string {
	if p := os.Getenv("GITFX_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gitfx", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path and
// GITFX_* environment variables, in that order. An empty path loads
// DefaultPath, which may be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(os.ExpandEnv(path), explicit); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) readFile(path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"GITFX_MAX_PRINT_REFS": &c.Logrefs.MaxPrintRefs,
	}
	bools := map[string]*bool{
		"GITFX_REMOTES":      &c.Logrefs.Remotes,
		"GITFX_TAGS":         &c.Logrefs.Tags,
		"GITFX_FORCE_COMMIT": &c.Submodsync.ForceCommit,
	}
	strs := map[string]*string{
		"GITFX_DIRTY_CHECK": &c.Submodsync.DirtyCheck,
		"GITFX_LOG_LEVEL":   &c.Log.Level,
		"GITFX_LOG_FORMAT":  &c.Log.Format,
	}

	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	for key, dst := range bools {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Logrefs.MaxPrintRefs < 0 {
		return fmt.Errorf("logrefs.max_print_refs must not be negative: %d", c.Logrefs.MaxPrintRefs)
	}
	if _, err := submodule.ParseDirtyPolicy(c.Submodsync.DirtyCheck); err != nil {
		return fmt.Errorf("submodsync.dirty_check: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q (must be text or json)", c.Log.Format)
	}
	return nil
}

// DirtyPolicy returns the parsed submodsync.dirty_check value.
func (c *Config) DirtyPolicy() submodule.DirtyPolicy {
	p, err := submodule.ParseDirtyPolicy(c.Submodsync.DirtyCheck)
	if err != nil {
		return submodule.DirtyAgainstHead
	}
	return p
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q (must be debug, info, warn or error)", s)
}
