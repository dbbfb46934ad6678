package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Player.SeekStepSec)
	assert.Equal(t, 80, cfg.Player.Width)
	assert.Equal(t, 250*time.Millisecond, cfg.Tick())
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.yaml")
	content := `
logging:
  level: debug
player:
  audio_url: "https://example.com/a.mp3"
  seek_step_sec: 10
engine:
  tick_ms: 100
  wave_view:
    wave_color: cyan
    bar_width: 2
    height: 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://example.com/a.mp3", cfg.Player.AudioURL)
	assert.Equal(t, 10, cfg.Player.SeekStepSec)
	assert.Equal(t, 100*time.Millisecond, cfg.Tick())

	opts, err := cfg.WaveViewOptions()
	require.NoError(t, err)
	assert.Equal(t, "cyan", opts.WaveColor)
	assert.Equal(t, 2, opts.BarWidth)
	assert.Equal(t, 6, opts.Height)
	// Untouched knobs keep their defaults.
	assert.Equal(t, "white", opts.ProgressColor)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WAVEDECK_AUDIO_URL", "https://example.com/env.wav")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/env.wav", cfg.Player.AudioURL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
			errMsg:  "Level",
		},
		{
			name:    "tick too fast",
			mutate:  func(c *Config) { c.Engine.TickMs = 1 },
			wantErr: true,
			errMsg:  "TickMs",
		},
		{
			name:    "seek step out of range",
			mutate:  func(c *Config) { c.Player.SeekStepSec = 0 },
			wantErr: true,
			errMsg:  "SeekStepSec",
		},
		{
			name: "unknown wave view knob",
			mutate: func(c *Config) {
				c.Engine.WaveView = map[string]any{"wave_colour": "red"}
			},
			wantErr: true,
			errMsg:  "wave view",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
