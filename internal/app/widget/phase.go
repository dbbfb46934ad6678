// Package widget provides the playback widget: the single source of truth
// for playback state. It issues commands to the audio engine, reconciles
// the engine's asynchronous event stream into a consistent state, and
// drives the control surface from that state.
package widget

// Phase represents the widget's canonical playback phase. Exactly one
// phase holds at any instant.
type Phase int

const (
	PhaseUnloaded     Phase = iota // No resource loaded yet
	PhaseLoading                   // Resource loading (progress in percent)
	PhaseReadyPaused               // Resource ready, not playing
	PhaseReadyPlaying              // Resource playing
	PhaseFinished                  // Playback reached the end
	PhaseError                     // Engine reported an error
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUnloaded:
		return "unloaded"
	case PhaseLoading:
		return "loading"
	case PhaseReadyPaused:
		return "ready_paused"
	case PhaseReadyPlaying:
		return "ready_playing"
	case PhaseFinished:
		return "finished"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}
