package widget

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/tonearm/wavedeck/internal/app/surface"
	"github.com/tonearm/wavedeck/internal/domain/timefmt"
	"github.com/tonearm/wavedeck/internal/engine"
)

// Widget is the playback controller. It owns the canonical playback state
// and is the only writer of the control surface.
//
// The widget never updates the play/pause icon optimistically on user
// intent: commands are forwarded to the engine and the icon changes only
// when the engine's own echo event confirms the state change. A command
// issued in an invalid phase is forwarded anyway; tolerating it is the
// engine's responsibility.
type Widget struct {
	mu sync.Mutex

	eng  engine.Engine
	surf surface.Surface

	// Canonical playback state, mutated only by LoadAudio and apply.
	phase       Phase
	loadPercent int
	isPlaying   bool
	currentTime float64
	duration    float64
	lastError   string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a widget bound to the given engine and surface, subscribes
// to the engine event stream and registers the play-toggle handler. The
// surface must be live before construction.
func New(eng engine.Engine, surf surface.Surface) *Widget {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Widget{
		eng:    eng,
		surf:   surf,
		phase:  PhaseUnloaded,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	surf.OnPlayToggleRequested(w.TogglePlayPause)
	go w.loop()

	return w
}

// Close detaches the widget from the surface and stops the event loop.
// The engine is not closed; it belongs to the caller.
func (w *Widget) Close() {
	w.surf.OnPlayToggleRequested(nil)
	w.cancel()
	<-w.done
}

// LoadAudio loads the resource at url, replacing any current one. The
// phase is reset to Loading synchronously, before the engine has
// acknowledged anything, so events still in flight for a previous
// resource cannot be mistaken for progress on this one. URL validation is
// the caller's job.
func (w *Widget) LoadAudio(url string) error {
	w.mu.Lock()
	w.phase = PhaseLoading
	w.loadPercent = 0
	w.isPlaying = false
	w.currentTime = 0
	w.duration = 0
	w.lastError = ""

	w.surf.SetPlayingIcon(false)
	w.surf.SetTimeLabel("")
	w.surf.ShowLoading(nil)
	w.mu.Unlock()

	zlog.Debug().Msgf("widget: loading %s", url)
	return w.eng.Load(url)
}

// Play forwards a play command to the engine. State and icon change only
// on the engine's play echo.
func (w *Widget) Play() {
	w.eng.Play()
}

// Pause forwards a pause command to the engine.
func (w *Widget) Pause() {
	w.eng.Pause()
}

// TogglePlayPause forwards a toggle command to the engine.
func (w *Widget) TogglePlayPause() {
	w.eng.TogglePlayPause()
}

// Stop forwards a stop command to the engine.
func (w *Widget) Stop() {
	w.eng.Stop()
}

// Seek forwards a seek command to the engine. The time label updates when
// the engine echoes the new position.
func (w *Widget) Seek(seconds float64) {
	w.eng.Seek(seconds)
}

// Phase returns the current playback phase.
func (w *Widget) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// LoadPercent returns the last reported load progress. Meaningful only in
// PhaseLoading.
func (w *Widget) LoadPercent() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadPercent
}

// IsPlaying returns true if the engine has confirmed playback is running.
func (w *Widget) IsPlaying() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isPlaying
}

// CurrentTime returns the current playback position in seconds.
func (w *Widget) CurrentTime() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentTime
}

// Duration returns the duration of the loaded resource in seconds.
func (w *Widget) Duration() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.duration
}

// LastError returns the last engine error message. Meaningful only in
// PhaseError.
func (w *Widget) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

// loop drains the engine event stream. Each event is fully applied (state
// mutated and surface rendered) before the next one is dequeued.
func (w *Widget) loop() {
	defer close(w.done)

	events := w.eng.Events()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.apply(ev)
		}
	}
}

// apply reconciles one engine event into the playback state and renders
// the result. Events are applied in arrival order; an event that has no
// transition from the current phase is dropped, which keeps duplicates
// and late stragglers from tearing the state.
func (w *Widget) apply(ev engine.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch ev.Type {
	case engine.EventLoading:
		if w.phase != PhaseLoading {
			w.dropLocked(ev)
			return
		}
		// Percent may go backwards when the engine restarts buffering.
		p := clampPercent(ev.Percent)
		w.loadPercent = p
		w.surf.ShowLoading(&p)

	case engine.EventReady:
		if w.phase != PhaseLoading {
			w.dropLocked(ev)
			return
		}
		w.phase = PhaseReadyPaused
		w.duration = w.eng.Duration()
		w.currentTime = clampTime(w.eng.CurrentTime(), w.duration)
		w.surf.HideLoading()
		w.surf.SetTimeLabel(timefmt.Range(w.currentTime, w.duration))
		zlog.Debug().Msgf("widget: ready, duration=%.1fs", w.duration)

	case engine.EventPlay:
		if w.phase != PhaseReadyPaused && w.phase != PhaseReadyPlaying && w.phase != PhaseFinished {
			w.dropLocked(ev)
			return
		}
		w.phase = PhaseReadyPlaying
		w.isPlaying = true
		w.surf.SetPlayingIcon(true)

	case engine.EventPause:
		if w.phase != PhaseReadyPlaying && w.phase != PhaseReadyPaused {
			w.dropLocked(ev)
			return
		}
		w.phase = PhaseReadyPaused
		w.isPlaying = false
		w.surf.SetPlayingIcon(false)

	case engine.EventFinish:
		if w.phase != PhaseReadyPlaying {
			w.dropLocked(ev)
			return
		}
		w.phase = PhaseFinished
		w.isPlaying = false
		w.surf.SetPlayingIcon(false)

	case engine.EventAudioProcess, engine.EventSeek:
		if w.phase != PhaseReadyPaused && w.phase != PhaseReadyPlaying && w.phase != PhaseFinished {
			w.dropLocked(ev)
			return
		}
		w.currentTime = clampTime(ev.Seconds, w.duration)
		w.surf.SetTimeLabel(timefmt.Range(w.currentTime, w.duration))

	case engine.EventError:
		w.phase = PhaseError
		w.isPlaying = false
		w.lastError = ev.Message
		w.surf.HideLoading()
		w.surf.SetPlayingIcon(false)
		zlog.Error().Msgf("widget: engine error: %s", ev.Message)
	}
}

// dropLocked logs an event that has no transition from the current phase.
// Must be called with lock held.
func (w *Widget) dropLocked(ev engine.Event) {
	zlog.Debug().Msgf("widget: ignoring %s event in phase %s", ev.Type, w.phase)
}

// clampPercent clamps load progress to 0..100.
func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// clampTime clamps a reported position to the known duration. Engines may
// report transient overshoot near the end of a resource.
func clampTime(seconds, duration float64) float64 {
	if seconds < 0 {
		return 0
	}
	if duration > 0 && seconds > duration {
		return duration
	}
	return seconds
}
