package surface

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonearm/wavedeck/internal/engine"
)

func newTestTerm() (*Term, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewTerm(&buf, 40, engine.DefaultOptions()), &buf
}

func TestTerm_SetPlayingIconIdempotent(t *testing.T) {
	term, buf := newTestTerm()

	term.SetPlayingIcon(true)
	first := buf.String()
	assert.Contains(t, first, pauseGlyph)

	term.SetPlayingIcon(true)
	assert.Equal(t, first, buf.String(), "repeated identical update must write nothing")

	term.SetPlayingIcon(false)
	assert.Contains(t, buf.String(), playGlyph)
	assert.Greater(t, buf.Len(), len(first))
}

func TestTerm_SetTimeLabelIdempotent(t *testing.T) {
	term, buf := newTestTerm()

	term.SetTimeLabel("1:05 / 2:00")
	first := buf.String()
	assert.Contains(t, first, "1:05 / 2:00")

	term.SetTimeLabel("1:05 / 2:00")
	assert.Equal(t, first, buf.String())

	term.SetTimeLabel("1:06 / 2:00")
	assert.Contains(t, buf.String(), "1:06 / 2:00")
}

func TestTerm_LoadingIndicator(t *testing.T) {
	term, buf := newTestTerm()

	term.ShowLoading(nil)
	assert.Contains(t, buf.String(), "Loading...")

	p := 40
	term.ShowLoading(&p)
	assert.Contains(t, buf.String(), "Loading: 40%")

	// Identical percent writes nothing more.
	before := buf.Len()
	term.ShowLoading(&p)
	assert.Equal(t, before, buf.Len())

	// Regressing percent is displayed as-is.
	p = 10
	term.ShowLoading(&p)
	assert.Contains(t, buf.String(), "Loading: 10%")

	term.HideLoading()
	after := buf.Len()
	term.HideLoading()
	assert.Equal(t, after, buf.Len(), "hide is idempotent")
}

func TestTerm_ToggleHandlerLastRegistrationWins(t *testing.T) {
	term, _ := newTestTerm()

	var firstCalls, secondCalls int
	term.OnPlayToggleRequested(func() { firstCalls++ })
	term.OnPlayToggleRequested(func() { secondCalls++ })

	term.Toggle()
	term.Toggle()

	assert.Zero(t, firstCalls, "replaced handler must not fire")
	assert.Equal(t, 2, secondCalls)
}

func TestTerm_ToggleWithoutHandler(t *testing.T) {
	term, _ := newTestTerm()
	assert.NotPanics(t, func() { term.Toggle() })

	term.OnPlayToggleRequested(func() {})
	term.OnPlayToggleRequested(nil)
	assert.NotPanics(t, func() { term.Toggle() })
}

func TestTerm_DrawWaveformIdempotent(t *testing.T) {
	term, buf := newTestTerm()

	peaks := []float64{0.2, 0.8, 0.5, 1.0}
	term.DrawWaveform(peaks, 0.5)
	first := buf.Len()
	assert.Greater(t, first, 0)

	term.DrawWaveform(peaks, 0.5)
	assert.Equal(t, first, buf.Len(), "identical frame must write nothing")

	term.DrawWaveform(peaks, 0.75)
	assert.Greater(t, buf.Len(), first, "cursor movement redraws")
}

func TestTerm_DrawWaveformCursorWidth(t *testing.T) {
	peaks := []float64{0.2, 0.8, 0.5, 1.0}

	narrow := engine.DefaultOptions()
	narrow.CursorWidth = 1
	wide := engine.DefaultOptions()
	wide.CursorWidth = 3

	var narrowBuf, wideBuf bytes.Buffer
	NewTerm(&narrowBuf, 40, narrow).DrawWaveform(peaks, 0.5)
	NewTerm(&wideBuf, 40, wide).DrawWaveform(peaks, 0.5)

	assert.Contains(t, narrowBuf.String(), "\033[7;", "cursor band renders in reverse video")
	assert.Greater(t,
		strings.Count(wideBuf.String(), "\033[7;"),
		strings.Count(narrowBuf.String(), "\033[7;"),
		"a wider cursor covers more columns")
}
