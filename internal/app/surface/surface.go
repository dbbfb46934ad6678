// Package surface provides the playback control surface: the visual
// primitives (play/pause toggle, time label, loading indicator, waveform
// region) the widget renders to. The surface holds no playback state and
// never talks to the engine; it draws exactly what it is told to draw.
package surface

// Surface is the render target driven by the playback widget.
//
// All update operations must be idempotent: calling one twice with the
// same value produces no additional visible change.
type Surface interface {
	// SetPlayingIcon shows the pause glyph when isPlaying is true and the
	// play glyph otherwise.
	SetPlayingIcon(isPlaying bool)

	// SetTimeLabel replaces the displayed time text verbatim.
	SetTimeLabel(text string)

	// ShowLoading makes the loading indicator visible. With a percent it
	// displays "Loading: N%", with nil a plain "Loading..." indicator.
	ShowLoading(percent *int)

	// HideLoading hides the loading indicator regardless of prior percent.
	HideLoading()

	// OnPlayToggleRequested registers the callback invoked when the user
	// activates the play/pause control. There is exactly one control, so
	// the last registration wins.
	OnPlayToggleRequested(handler func())
}
