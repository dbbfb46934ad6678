package engine

// EventType represents an engine event type.
type EventType int

const (
	EventReady        EventType = iota // Resource decoded and ready for playback
	EventPlay                          // Playback actually started (command echo)
	EventPause                         // Playback actually paused (command echo)
	EventFinish                        // Playback reached the end of the resource
	EventAudioProcess                  // Playback position advanced
	EventSeek                          // Playback position jumped
	EventLoading                       // Load progress (Percent 0-100)
	EventError                         // Decode or fetch failure (Message set)
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventReady:
		return "ready"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventFinish:
		return "finish"
	case EventAudioProcess:
		return "audioprocess"
	case EventSeek:
		return "seek"
	case EventLoading:
		return "loading"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event represents an engine event. Events carry no resource identifier;
// a consumer that loads a new resource while events for the previous one
// are still in flight relies on the engine to stop emitting for the old
// resource first.
type Event struct {
	Type    EventType
	Percent int     // Load progress for EventLoading (0-100)
	Seconds float64 // Playback position for EventAudioProcess/EventSeek
	Message string  // Error message for EventError
}
