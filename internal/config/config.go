// Package config loads the YAML settings shared by the server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ironsheep/image-tone-mcp/internal/imaging"
	"github.com/ironsheep/image-tone-mcp/internal/logging"
)

// Environment variables read by Load.
const (
	EnvConfigPath = "IMAGE_TONE_CONFIG"
	EnvLogLevel   = "IMAGE_TONE_LOG_LEVEL"
)

// Config is the top-level configuration file.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Tone   ToneConfig   `yaml:"tone"`
	Frames FramesConfig `yaml:"frames"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ToneConfig struct {
	// ClipFraction is the tail fraction used by clipped stretch when a
	// request does not name one.
	ClipFraction float64 `yaml:"clip_fraction"`
}

type FramesConfig struct {
	WindowSize   int    `yaml:"window_size"`
	Workers      int    `yaml:"workers"`
	Order        string `yaml:"order"`
	OutputFormat string `yaml:"output_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
		Tone: ToneConfig{
			ClipFraction: 0.01,
		},
		Frames: FramesConfig{
			WindowSize:   5,
			Workers:      4,
			Order:        imaging.OrderByName.String(),
			OutputFormat: "png",
		},
	}
}

// Load reads path over the defaults. An empty path falls back to
// $IMAGE_TONE_CONFIG, and when that is unset too the defaults are returned.
// $IMAGE_TONE_LOG_LEVEL overrides log.level. The result is validated.
func Load(path string) (Config, error) {
	c := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Log.Level = lvl
	}

	return c, c.Validate()
}

// Validate reports every invalid setting in one error.
func (c Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	if c.Tone.ClipFraction < 0 || c.Tone.ClipFraction > 1 {
		errs = append(errs, fmt.Errorf("tone.clip_fraction: %v is outside [0, 1]", c.Tone.ClipFraction))
	}

	if c.Frames.WindowSize < 1 {
		errs = append(errs, fmt.Errorf("frames.window_size: %d must be at least 1", c.Frames.WindowSize))
	}
	if c.Frames.Workers < 1 {
		errs = append(errs, fmt.Errorf("frames.workers: %d must be at least 1", c.Frames.Workers))
	}
	if _, err := imaging.ParseSequenceOrder(c.Frames.Order); err != nil {
		errs = append(errs, fmt.Errorf("frames.order: %w", err))
	}
	if !imaging.IsWritableFormat(c.Frames.OutputFormat) {
		errs = append(errs, fmt.Errorf("frames.output_format: cannot write %q", c.Frames.OutputFormat))
	}

	return errors.Join(errs...)
}

// YAML renders c as a config file.
func (c Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(b), nil
}
