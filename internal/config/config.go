package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gridlog/internal/gridlog"
)

const (
	DefaultInput    = "log.txt"
	DefaultLongCSV  = "heat2d_long.csv"
	DefaultSnapshot = "heat2d_grids.npz"
	DefaultHeight   = 100
	DefaultWidth    = 100
	DefaultStride   = 1
	DefaultTheme    = "inferno"
	DefaultLogLevel = "info"
)

type Config struct {
	Input        string       `yaml:"input"`
	Output       OutputConfig `yaml:"output"`
	Grid         GridConfig   `yaml:"grid"`
	MaxSteps     int          `yaml:"max_steps"`
	MarkerPolicy string       `yaml:"marker_policy"`
	Viz          VizConfig    `yaml:"viz"`
	LogLevel     string       `yaml:"log_level"`
}

type OutputConfig struct {
	LongCSV  string `yaml:"long_csv"`
	Snapshot string `yaml:"snapshot"`
}

type GridConfig struct {
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
}

type VizConfig struct {
	Stride int    `yaml:"stride"`
	Theme  string `yaml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Input: DefaultInput,
		Output: OutputConfig{
			LongCSV:  DefaultLongCSV,
			Snapshot: DefaultSnapshot,
		},
		Grid: GridConfig{
			Height: DefaultHeight,
			Width:  DefaultWidth,
		},
		MarkerPolicy: gridlog.MarkerSkipped.String(),
		Viz: VizConfig{
			Stride: DefaultStride,
			Theme:  DefaultTheme,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	return Overlay(DefaultConfig(), path)
}

// Overlay reads a YAML file on top of a copy of base, so keys absent from
// the file keep base's values.
func Overlay(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.ParseOptions(nil); err != nil {
		return err
	}
	if c.Viz.Stride < 1 {
		return fmt.Errorf("viz stride must be >= 1, got %d", c.Viz.Stride)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseOptions builds parser options from the grid section.
func (c *Config) ParseOptions(logger *slog.Logger) (gridlog.Options, error) {
	policy, err := gridlog.ParseMarkerPolicy(c.MarkerPolicy)
	if err != nil {
		return gridlog.Options{}, err
	}
	opts := gridlog.Options{
		Height:   c.Grid.Height,
		Width:    c.Grid.Width,
		MaxSteps: c.MaxSteps,
		Policy:   policy,
		Logger:   logger,
	}
	return opts, opts.Validate()
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
