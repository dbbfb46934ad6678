package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// Options holds the visual styling knobs passed through to the rendering
// side at construction. They are opaque to the widget: it forwards them
// verbatim and never interprets them.
type Options struct {
	WaveColor     string `mapstructure:"wave_color"`
	ProgressColor string `mapstructure:"progress_color"`
	CursorWidth   int    `mapstructure:"cursor_width"`
	BarWidth      int    `mapstructure:"bar_width"`
	BarGap        int    `mapstructure:"bar_gap"`
	Height        int    `mapstructure:"height"`
	Responsive    bool   `mapstructure:"responsive"`
	HideScrollbar bool   `mapstructure:"hide_scrollbar"`
}

// DefaultOptions returns the styling defaults used when no knobs are
// configured.
func DefaultOptions() Options {
	return Options{
		WaveColor:     "gray",
		ProgressColor: "white",
		CursorWidth:   1,
		BarWidth:      1,
		Height:        4,
		Responsive:    true,
		HideScrollbar: true,
	}
}

// DecodeOptions decodes a raw settings map into Options, starting from the
// defaults. Unknown keys are rejected so a typo in the config surfaces
// instead of silently falling back.
func DecodeOptions(settings map[string]any) (Options, error) {
	opts := DefaultOptions()
	if len(settings) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		ErrorUnused: true,
	})
	if err != nil {
		return opts, errors.Wrap(err, "failed to build options decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return opts, errors.Wrap(err, "invalid wave view settings")
	}
	return opts, nil
}
