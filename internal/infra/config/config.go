// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tonearm/wavedeck/internal/engine"
)

// Config represents the application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Player  PlayerConfig  `yaml:"player"`
	Engine  EngineConfig  `yaml:"engine"`
}

// LoggingConfig represents logger configuration.
type LoggingConfig struct {
	Output string `yaml:"output" default:"stderr"`
	Level  string `yaml:"level" default:"info" validate:"omitempty,oneof=debug info warn error"`
	File   string `yaml:"file"`
}

// PlayerConfig represents player configuration.
type PlayerConfig struct {
	AudioURL    string `yaml:"audio_url"`
	SeekStepSec int    `yaml:"seek_step_sec" default:"5" validate:"gte=1,lte=60"`
	Width       int    `yaml:"width" default:"80" validate:"gte=20,lte=400"`
}

// EngineConfig represents audio engine configuration. WaveView holds the
// visual styling knobs; they are opaque here and decoded only by the
// rendering side.
type EngineConfig struct {
	CacheDir string         `yaml:"cache_dir"`
	TickMs   int            `yaml:"tick_ms" default:"250" validate:"gte=50,lte=2000"`
	WaveView map[string]any `yaml:"wave_view"`
}

// Load loads configuration from a YAML file. A missing file is not an
// error: the defaults apply. Environment variables take precedence over
// file values.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("WAVEDECK_AUDIO_URL"); v != "" {
		c.Player.AudioURL = v
	}
	if v := os.Getenv("WAVEDECK_CACHE_DIR"); v != "" {
		c.Engine.CacheDir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Decode the styling knobs eagerly so a typo fails at startup, not
	// at first render.
	if _, err := c.WaveViewOptions(); err != nil {
		return err
	}

	return nil
}

// WaveViewOptions decodes the opaque styling knobs into engine options.
func (c *Config) WaveViewOptions() (engine.Options, error) {
	return engine.DecodeOptions(c.Engine.WaveView)
}

// Tick returns the engine position report interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Engine.TickMs) * time.Millisecond
}
