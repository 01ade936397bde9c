// Package config loads the recorder's settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. HITDATA_BATCH_SIZE.
const EnvPrefix = "HITDATA_"

// DatabaseFile is the database location relative to the game directory.
var DatabaseFile = filepath.Join("UserData", "HitDatabase.sqlite")

// Config holds the recorder settings.
type Config struct {
	RecordBombHits   bool   `koanf:"record_bomb_hits"`
	RecordDeviations bool   `koanf:"record_deviations"`
	BatchSize        int    `koanf:"batch_size"`
	LogLevel         string `koanf:"log_level"` // debug | info | warn | error
}

var defaults = map[string]interface{}{
	"record_bomb_hits":  false,
	"record_deviations": false,
	"batch_size":        100,
	"log_level":         "info",
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		BatchSize: 100,
		LogLevel:  "info",
	}
}

func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (must be debug, info, warn or error)", s)
	}
}

// Load reads defaults, then the YAML file at configPath if it exists, then
// HITDATA_* environment variables. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabasePath returns the fixed database location under the game directory.
func DatabasePath(baseDir string) string {
	return filepath.Join(baseDir, DatabaseFile)
}
