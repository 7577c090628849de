package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all lefse-format configuration.
type Config struct {
	// Formatting options
	Format FormatConfig `yaml:"format"`

	// Output settings
	Output OutputConfig `yaml:"output"`

	// Batch execution
	Batch BatchConfig `yaml:"batch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// FormatConfig configures the matrix transformation.
type FormatConfig struct {
	FeaturesOn string `yaml:"features_on" validate:"oneof=rows columns r c"` // rows, columns

	// Label rows, 1-based. Zero means the dimension is not used.
	Class    int `yaml:"class" validate:"gte=1"`
	Subclass int `yaml:"subclass" validate:"gte=0"`
	Subject  int `yaml:"subject" validate:"gte=0"`

	// Per-sample target total; negative disables normalization.
	NormValue float64 `yaml:"norm_value"`

	MissingPolicy string `yaml:"missing_policy" validate:"oneof=f s d"` // f: drop features, s: drop samples, d: default

	// Small subclass handling
	SubclassMinCard      int  `yaml:"subclass_min_card" validate:"gte=0"`
	MergeSmallSubclasses bool `yaml:"merge_small_subclasses"`

	// BIOM metadata names overriding the default class/subclass rows
	BIOMClass    string `yaml:"biom_class"`
	BIOMSubclass string `yaml:"biom_subclass"`
}

// OutputConfig configures dataset persistence.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=json sqlite"` // json, sqlite
	Table  string `yaml:"table"`                               // optional side table path
}

// BatchConfig configures the batch runner.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" validate:"gte=1,lte=256"`
}

var validate = validator.New()

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Format: FormatConfig{
			FeaturesOn:      "rows",
			Class:           1,
			NormValue:       -1.0,
			MissingPolicy:   "d",
			SubclassMinCard: 10,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Environment variables read by applyEnvOverrides.
const (
	EnvLogLevel    = "LEFSE_FORMAT_LOG_LEVEL"
	EnvOutput      = "LEFSE_FORMAT_OUTPUT"
	EnvNorm        = "LEFSE_FORMAT_NORM"
	EnvConcurrency = "LEFSE_FORMAT_CONCURRENCY"
)

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if out := os.Getenv(EnvOutput); out != "" {
		c.Output.Format = out
	}
	if norm := os.Getenv(EnvNorm); norm != "" {
		v, err := strconv.ParseFloat(norm, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvNorm, err)
		}
		c.Format.NormValue = v
	}
	if n := os.Getenv(EnvConcurrency); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvConcurrency, err)
		}
		c.Batch.Concurrency = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NormalizationEnabled reports whether a non-negative target is configured.
func (c *Config) NormalizationEnabled() bool {
	return c.Format.NormValue >= 0
}
