// Package config holds the tunables of the analytics commands.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional YAML file, then MATCHMETRICS_* environment variables. Command
// flags are applied on top by the caller.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix     = "MATCHMETRICS_"
	EnvConfigFile = EnvPrefix + "CONFIG"

	maxPrecision = 6
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GridSize is the heatmap cell size in canvas units.
	GridSize int `koanf:"grid_size"`

	// PassEndWeight is the heatmap weight of a pass destination.
	PassEndWeight float64 `koanf:"pass_end_weight"`

	// MinPassThreshold hides network edges with fewer passes.
	MinPassThreshold int `koanf:"min_pass_threshold"`

	// Precision is the number of decimals shown in report tables.
	Precision int `koanf:"precision"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// DurationBuckets overrides the operation duration histogram buckets.
	DurationBuckets []float64 `koanf:"duration_buckets"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		GridSize:         20,
		PassEndWeight:    0.5,
		MinPassThreshold: 2,
		Precision:        1,
	}
}

// Load builds a Config from defaults, the YAML file at path (or at
// $MATCHMETRICS_CONFIG when path is empty) and the environment.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := *New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// MATCHMETRICS_GRID_SIZE -> grid_size
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("%w: grid_size must be positive, got %d", ErrInvalidConfig, c.GridSize)
	}
	if c.PassEndWeight < 0 {
		return fmt.Errorf("%w: pass_end_weight must be >= 0, got %v", ErrInvalidConfig, c.PassEndWeight)
	}
	for i := 1; i < len(c.DurationBuckets); i++ {
		if c.DurationBuckets[i] <= c.DurationBuckets[i-1] {
			return fmt.Errorf("%w: duration_buckets must be increasing", ErrInvalidConfig)
		}
	}
	if c.MinPassThreshold < 0 {
		return fmt.Errorf("%w: min_pass_threshold must be >= 0, got %d", ErrInvalidConfig, c.MinPassThreshold)
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return fmt.Errorf("%w: precision must be within [0,%d], got %d", ErrInvalidConfig, maxPrecision, c.Precision)
	}
	return nil
}
