package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nullishamy/dakko/internal/engine"
	"github.com/nullishamy/dakko/internal/logging"
)

// Default values written by `dakko config init`.
const (
	DefaultKeeps        = 30
	DefaultBuffer       = 10
	DefaultEstimateSize = 3
	DefaultItems        = 500
	DefaultMinHeight    = 1
	DefaultMaxHeight    = 4

	configFileName = "config.yaml"
)

// Environment variables that override the configuration file.
const (
	EnvLogLevel  = "DAKKO_LOG_LEVEL"
	EnvLogFormat = "DAKKO_LOG_FORMAT"
	EnvLogFile   = "DAKKO_LOG_FILE"
	EnvKeeps     = "DAKKO_KEEPS"
	EnvBuffer    = "DAKKO_BUFFER"
	EnvHome      = "DAKKO_HOME"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the dakko configuration file.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"  json:"engine"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	TUI     TUIConfig     `yaml:"tui"     json:"tui"`

	configPath string
}

// EngineConfig holds the windowing parameters shared by every list.
type EngineConfig struct {
	Keeps        int     `yaml:"keeps"         json:"keeps"`
	Buffer       int     `yaml:"buffer"        json:"buffer"`
	EstimateSize float64 `yaml:"estimate_size" json:"estimate_size"`
	HeaderOffset float64 `yaml:"header_offset" json:"header_offset"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"          json:"level"`
	Format string `yaml:"format"         json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// TUIConfig controls the demo list shown by `dakko tui`.
type TUIConfig struct {
	Items     int `yaml:"items"      json:"items"`
	MinHeight int `yaml:"min_height" json:"min_height"`
	MaxHeight int `yaml:"max_height" json:"max_height"`
}

// New returns the default configuration located in the dakko config directory.
func New() *Config {
	cfg := &Config{
		Engine: EngineConfig{
			Keeps:        DefaultKeeps,
			Buffer:       DefaultBuffer,
			EstimateSize: DefaultEstimateSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		TUI: TUIConfig{
			Items:     DefaultItems,
			MinHeight: DefaultMinHeight,
			MaxHeight: DefaultMaxHeight,
		},
	}

	if dir, err := GetConfigDir(); err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
	}
	return cfg
}

// Load returns the defaults with the file at path merged on top and the
// environment overrides applied. An empty path means the default location.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		cfg.configPath = path
	}

	if cfg.configPath != "" {
		_, err := os.Stat(cfg.configPath)
		switch {
		case err == nil:
			if mergeErr := ShallowMergeYAML(cfg, cfg.configPath); mergeErr != nil {
				return nil, mergeErr
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("cannot access config path %s: %w", cfg.configPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies DAKKO_* environment overrides.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvKeeps); v != "" {
		keeps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s=%q: %w", EnvKeeps, v, err)
		}
		c.Engine.Keeps = keeps
	}
	if v := os.Getenv(EnvBuffer); v != "" {
		buffer, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s=%q: %w", EnvBuffer, v, err)
		}
		c.Engine.Buffer = buffer
	}
	return nil
}

// ConfigPath returns the file this configuration is read from and saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file used by Save.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no configuration path set")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling configuration: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Logging.Format {
	case logging.FormatConsole, logging.FormatJSON, "":
	default:
		errs = append(errs, fmt.Errorf("%w: logging.format must be console or json, got %q",
			ErrInvalidConfig, c.Logging.Format))
	}
	if c.Logging.Level != "" {
		if _, err := zerologLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err))
		}
	}

	if c.TUI.Items < 0 {
		errs = append(errs, fmt.Errorf("%w: tui.items must be >= 0, got %d", ErrInvalidConfig, c.TUI.Items))
	}
	if c.TUI.MinHeight < 1 || c.TUI.MaxHeight < c.TUI.MinHeight {
		errs = append(errs, fmt.Errorf("%w: tui heights must satisfy 1 <= min_height <= max_height, got %d..%d",
			ErrInvalidConfig, c.TUI.MinHeight, c.TUI.MaxHeight))
	}

	return errors.Join(errs...)
}

// Validate applies the engine's own configuration rules.
func (ec EngineConfig) Validate() error {
	cfg := ToEngineConfig[int](ec, nil)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: engine: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ToEngineConfig builds an engine configuration over keys.
func ToEngineConfig[K comparable](ec EngineConfig, keys []K) engine.Config[K] {
	return engine.Config[K]{
		Keeps:        ec.Keeps,
		Buffer:       ec.Buffer,
		EstimateSize: ec.EstimateSize,
		HeaderOffset: ec.HeaderOffset,
		Keys:         keys,
	}
}
