// Package beepengine implements the engine contract on top of
// github.com/faiface/beep: decoding, speaker output, position tracking and
// waveform peak computation.
package beepengine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/tonearm/wavedeck/internal/engine"
)

// Errors
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	peakResolution    = 512 // Buckets kept internally; Peaks() re-buckets on demand
	eventBufferSize   = 16
)

var speakerOnce sync.Once

var _ engine.Engine = (*Engine)(nil)

// Config holds engine configuration.
type Config struct {
	CacheDir string         // Directory for fetched audio files (default: os.TempDir()/wavedeck_audio)
	Tick     time.Duration  // Position report interval (default 250ms)
	View     engine.Options // Styling knobs, passed through verbatim, never interpreted here
}

// Engine is a beep-backed playback engine. Commands are tolerated as
// no-ops when no resource is ready; confirmed state changes are echoed on
// the event stream.
type Engine struct {
	mu sync.Mutex

	config Config

	// Current resource state
	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
	format    beep.Format
	ctrl      *beep.Ctrl
	file      *os.File
	ready     bool
	finished  bool
	peaks     []float64

	// loadSeq fences goroutines belonging to a superseded load: every
	// Load bumps it, and async work compares its captured value before
	// touching state or emitting events.
	loadSeq uint64

	events   chan engine.Event
	finishCh chan uint64
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a beep engine. The speaker is initialized once per process
// on the first successful load.
func New(config Config) *Engine {
	if config.CacheDir == "" {
		config.CacheDir = filepath.Join(os.TempDir(), "wavedeck_audio")
	}
	if config.Tick <= 0 {
		config.Tick = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		config:   config,
		events:   make(chan engine.Event, eventBufferSize),
		finishCh: make(chan uint64, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	go e.monitor()
	return e
}

// View returns the styling options handed over at construction.
func (e *Engine) View() engine.Options {
	return e.config.View
}

// Events returns the engine event stream.
func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// Load starts loading the resource at url, replacing any current one.
// The method returns immediately; progress, readiness and failures are
// reported on the event stream.
func (e *Engine) Load(url string) error {
	e.mu.Lock()
	e.loadSeq++
	seq := e.loadSeq
	e.teardownLocked()
	e.mu.Unlock()

	go e.loadAsync(seq, url)
	return nil
}

func (e *Engine) loadAsync(seq uint64, url string) {
	path, err := e.fetch(seq, url)
	if err != nil {
		e.emitFor(seq, engine.Event{Type: engine.EventError, Message: err.Error()})
		return
	}

	f, err := os.Open(path)
	if err != nil {
		e.emitFor(seq, engine.Event{Type: engine.EventError, Message: err.Error()})
		return
	}

	streamer, format, err := decode(f, path)
	if err != nil {
		f.Close()
		e.emitFor(seq, engine.Event{Type: engine.EventError, Message: err.Error()})
		return
	}

	peaks, err := computePeaks(streamer, peakResolution)
	if err != nil {
		streamer.Close()
		f.Close()
		e.emitFor(seq, engine.Event{Type: engine.EventError, Message: err.Error()})
		return
	}

	var speakerErr error
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(100*time.Millisecond))
	})
	if speakerErr != nil {
		streamer.Close()
		f.Close()
		e.emitFor(seq, engine.Event{Type: engine.EventError, Message: speakerErr.Error()})
		return
	}

	var resampled beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		resampled = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}

	e.mu.Lock()
	if seq != e.loadSeq {
		// Superseded by a newer load while decoding.
		e.mu.Unlock()
		streamer.Close()
		f.Close()
		return
	}
	e.streamer = streamer
	e.resampled = resampled
	e.format = format
	e.file = f
	e.peaks = peaks
	e.finished = false
	e.ready = true
	e.ctrl = &beep.Ctrl{Streamer: e.playChainLocked(seq), Paused: true}
	ctrl := e.ctrl
	e.mu.Unlock()

	speaker.Play(ctrl)

	zlog.Debug().Msgf("beepengine: ready: path=%s rate=%d len=%d", path, format.SampleRate, streamer.Len())
	e.emitFor(seq, engine.Event{Type: engine.EventLoading, Percent: 100})
	e.emitFor(seq, engine.Event{Type: engine.EventReady})
}

// playChainLocked builds the streamer chain ending in a finish callback.
// The callback runs on the speaker goroutine, so it only posts to the
// finish channel; the monitor goroutine does the real work.
// Must be called with lock held.
func (e *Engine) playChainLocked(seq uint64) beep.Streamer {
	return beep.Seq(e.resampled, beep.Callback(func() {
		select {
		case e.finishCh <- seq:
		default:
		}
	}))
}

// Play starts or resumes playback. A no-op when nothing is ready. After a
// finish, playback restarts from the beginning.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playLocked()
}

func (e *Engine) playLocked() {
	if !e.ready || e.ctrl == nil {
		return
	}

	if e.finished {
		// The drained streamer was removed from the mixer; rebuild the
		// chain and re-add it.
		speaker.Lock()
		if err := e.streamer.Seek(0); err != nil {
			speaker.Unlock()
			e.emitLocked(engine.Event{Type: engine.EventError, Message: err.Error()})
			return
		}
		speaker.Unlock()

		e.finished = false
		e.ctrl = &beep.Ctrl{Streamer: e.playChainLocked(e.loadSeq), Paused: false}
		speaker.Play(e.ctrl)
		e.emitLocked(engine.Event{Type: engine.EventPlay})
		return
	}

	if !e.ctrl.Paused {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	e.emitLocked(engine.Event{Type: engine.EventPlay})
}

// Pause pauses playback. A no-op when nothing is playing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseLocked()
}

func (e *Engine) pauseLocked() {
	if !e.ready || e.ctrl == nil || e.finished || e.ctrl.Paused {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.emitLocked(engine.Event{Type: engine.EventPause})
}

// TogglePlayPause toggles between playing and paused.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || e.ctrl == nil {
		return
	}
	if e.finished || e.ctrl.Paused {
		e.playLocked()
	} else {
		e.pauseLocked()
	}
}

// Stop pauses playback and rewinds to the start.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || e.ctrl == nil {
		return
	}

	e.pauseLocked()

	speaker.Lock()
	err := e.streamer.Seek(0)
	speaker.Unlock()
	if err != nil {
		e.emitLocked(engine.Event{Type: engine.EventError, Message: err.Error()})
		return
	}
	e.emitLocked(engine.Event{Type: engine.EventSeek, Seconds: 0})
}

// Seek moves the playback position to the given offset in seconds,
// clamped to the resource bounds.
func (e *Engine) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || e.streamer == nil {
		return
	}

	n := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if max := e.streamer.Len() - 1; n > max {
		n = max
	}

	speaker.Lock()
	err := e.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		e.emitLocked(engine.Event{Type: engine.EventError, Message: err.Error()})
		return
	}
	e.emitLocked(engine.Event{Type: engine.EventSeek, Seconds: e.format.SampleRate.D(n).Seconds()})
}

// CurrentTime returns the playback position in seconds.
func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTimeLocked()
}

func (e *Engine) currentTimeLocked() float64 {
	if !e.ready || e.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(pos).Seconds()
}

// Duration returns the resource duration in seconds.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len()).Seconds()
}

// IsReady reports whether a resource is loaded and playable.
func (e *Engine) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Peaks returns the waveform re-bucketed to the requested resolution.
func (e *Engine) Peaks(buckets int) []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || len(e.peaks) == 0 {
		return nil
	}
	return rebucket(e.peaks, buckets)
}

// Progress returns the playback position as a 0..1 fraction of the
// duration, for driving the waveform cursor.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || e.streamer == nil || e.streamer.Len() == 0 {
		return 0
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return float64(pos) / float64(e.streamer.Len())
}

// Close stops playback, releases the current resource and closes the
// event stream. Safe to call more than once.
func (e *Engine) Close() {
	e.cancel()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.loadSeq++
	e.teardownLocked()
	e.mu.Unlock()

	// Every emit goes through emitLocked, which checks the closed flag
	// under the mutex, so no send can race this close.
	close(e.events)
}

// teardownLocked releases the current resource. Must be called with lock
// held.
func (e *Engine) teardownLocked() {
	if e.ctrl != nil {
		speaker.Clear()
	}
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
	e.resampled = nil
	e.ctrl = nil
	e.ready = false
	e.finished = false
	e.peaks = nil
}

// monitor handles finish callbacks and emits periodic position reports
// while playing.
func (e *Engine) monitor() {
	ticker := time.NewTicker(e.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case seq := <-e.finishCh:
			e.handleFinish(seq)
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) handleFinish(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.loadSeq || !e.ready {
		return
	}
	e.finished = true
	e.emitLocked(engine.Event{Type: engine.EventFinish})
}

func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || e.ctrl == nil || e.ctrl.Paused || e.finished {
		return
	}
	e.emitLocked(engine.Event{Type: engine.EventAudioProcess, Seconds: e.currentTimeLocked()})
}

// emitFor emits an event only if the given load is still current.
func (e *Engine) emitFor(seq uint64, ev engine.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.loadSeq {
		return
	}
	e.emitLocked(ev)
}

// emitLocked sends an event without blocking. Must be called with lock
// held: the closed flag is what keeps a send from racing Close. A full
// buffer drops the event; position reports are periodic, so a dropped
// one is harmless.
func (e *Engine) emitLocked(ev engine.Event) {
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
		zlog.Debug().Msgf("beepengine: event buffer full, dropping %s", ev.Type)
	}
}

// decode picks a decoder from the file extension.
func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Ext(path))
	}
}
