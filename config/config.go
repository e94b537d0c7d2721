// Package config loads settings for the osrhost tool.
//
// Values come from Default, then an optional TOML or YAML file, then OSR_*
// environment variables such as OSR_SURFACE_WIDTH or OSR_LOG_LEVEL.
// Command-line flags are applied by the caller.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/osr-runtime/errors"
)

// EnvPrefix prefixes every environment override, e.g. OSR_SURFACE_WIDTH.
const EnvPrefix = "OSR"

// Output formats.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// Config holds all osrhost configuration.
type Config struct {
	Renderer RendererConfig `toml:"renderer" yaml:"renderer" envconfig:"RENDERER"`
	Surface  SurfaceConfig  `toml:"surface" yaml:"surface" envconfig:"SURFACE"`
	Output   OutputConfig   `toml:"output" yaml:"output" envconfig:"OUTPUT"`
	Logging  LogConfig      `toml:"logging" yaml:"logging" envconfig:"LOG"`
}

// RendererConfig selects the renderer guest.
type RendererConfig struct {
	// Path to a renderer guest module. Empty runs the built-in demo.
	Path             string `toml:"path" yaml:"path"`
	Name             string `toml:"name" yaml:"name"`
	MemoryLimitPages uint32 `toml:"memory_limit_pages" yaml:"memory_limit_pages" split_words:"true"`
}

// SurfaceConfig describes the off-screen surface.
type SurfaceConfig struct {
	URL             string  `toml:"url" yaml:"url"`
	Width           int32   `toml:"width" yaml:"width"`
	Height          int32   `toml:"height" yaml:"height"`
	Scale           float64 `toml:"scale" yaml:"scale"`
	FrameRate       int32   `toml:"frame_rate" yaml:"frame_rate" split_words:"true"`
	BackgroundColor uint32  `toml:"background_color" yaml:"background_color" split_words:"true"`
	Transparent     bool    `toml:"transparent" yaml:"transparent"`
}

// OutputConfig controls where painted frames go.
type OutputConfig struct {
	// Dir receives one image per frame. Empty disables frame dumps.
	Dir    string `toml:"dir" yaml:"dir"`
	Format string `toml:"format" yaml:"format"`
	Frames int    `toml:"frames" yaml:"frames"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `toml:"level" yaml:"level"`
	Development bool   `toml:"development" yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Surface: SurfaceConfig{
			URL:             "about:blank",
			Width:           640,
			Height:          480,
			Scale:           1,
			FrameRate:       30,
			BackgroundColor: 0xffffffff,
		},
		Output: OutputConfig{
			Format: FormatPNG,
			Frames: 1,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration. Files ending in .yaml or .yml are YAML,
// anything else is TOML. A missing file at path is not an error; an empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return decodeYAML(path, data, cfg)
	default:
		return decodeTOML(path, data, cfg)
	}
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode "+path)
	}
	return nil
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode "+path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(undecoded[0].String()).
			Detail("unknown key in %s", path).
			Build()
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch {
	case c.Surface.Width < 1:
		return invalid("width must be at least 1", "surface", "width")
	case c.Surface.Height < 1:
		return invalid("height must be at least 1", "surface", "height")
	case c.Surface.Scale <= 0:
		return invalid("scale must be positive", "surface", "scale")
	case c.Surface.FrameRate < 0:
		return invalid("frame rate must not be negative", "surface", "frame_rate")
	case c.Output.Frames < 0:
		return invalid("frame count must not be negative", "output", "frames")
	case !slices.Contains([]string{FormatPNG, FormatBMP}, c.Output.Format):
		return invalid(fmt.Sprintf("unknown format %q", c.Output.Format), "output", "format")
	}
	if _, err := c.Logging.ZapLevel(); err != nil {
		return invalid(err.Error(), "logging", "level")
	}
	return nil
}

func invalid(detail string, path ...string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(path...).
		Detail(detail).
		Build()
}
