// Package config loads sidecar settings from an optional YAML file with
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-patrol/patrol"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "VIMY_PATROL_"

const DefaultSocket = "/tmp/vimy-patrol.sock"

// File is the on-disk and environment configuration of the sidecar process.
type File struct {
	Socket   string `yaml:"socket" env:"SOCKET"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// JournalDir enables the decision journal when non-empty.
	JournalDir string        `yaml:"journal_dir" env:"JOURNAL_DIR"`
	Patrol     patrol.Config `yaml:"patrol"`
}

func Default() File {
	return File{
		Socket:   DefaultSocket,
		LogLevel: "info",
		Patrol:   patrol.DefaultConfig(),
	}
}

// Load builds a File from defaults, then the YAML file at path (skipped when
// path is empty or the file does not exist), then environment variables.
func Load(path string) (File, error) {
	f := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Info("config file not found, using defaults", "path", path)
		case err != nil:
			return f, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &f); err != nil {
				return f, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	if err := ParseEnv(&f); err != nil {
		return f, err
	}

	f.Validate()
	return f, nil
}

// ParseEnv overlays VIMY_PATROL_* variables onto target. Unset variables
// leave the current value alone.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate fills blanks and clamps the patrol settings.
func (f *File) Validate() {
	if f.Socket == "" {
		f.Socket = DefaultSocket
	}
	if _, err := ParseLevel(f.LogLevel); err != nil {
		f.LogLevel = "info"
	}
	f.Patrol.Validate()
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
