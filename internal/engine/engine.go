// Package engine defines the capability contract of the audio-rendering
// engine. The engine owns decoding, timing and waveform computation; the
// rest of the application talks to it only through this interface and
// observes it only through its event stream.
package engine

// Engine is the playback engine consumed by the widget.
//
// Commands are fire-and-forget: the engine confirms state changes by
// emitting echo events (EventPlay, EventPause, ...) on Events(). Commands
// issued in a state where they make no sense (Play before Ready, Seek with
// nothing loaded) must be tolerated as no-ops by the implementation.
type Engine interface {
	// Load starts loading the resource at url, replacing any current one.
	// Progress and readiness are reported via EventLoading/EventReady.
	Load(url string) error

	Play()
	Pause()
	TogglePlayPause()
	Stop()

	// Seek moves the playback position to the given offset in seconds.
	Seek(seconds float64)

	// CurrentTime returns the current playback position in seconds.
	CurrentTime() float64

	// Duration returns the total duration of the loaded resource in seconds.
	Duration() float64

	// IsReady reports whether a resource is loaded and playable.
	IsReady() bool

	// Peaks returns the waveform downsampled to the given number of
	// buckets, each normalized to 0..1. Nil until the resource is ready.
	Peaks(buckets int) []float64

	// Events returns the engine event stream.
	Events() <-chan Event

	// Close releases playback resources and closes the event stream.
	Close()
}
