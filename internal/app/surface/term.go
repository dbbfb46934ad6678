package surface

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tonearm/wavedeck/internal/engine"
)

const (
	playGlyph  = "▶"
	pauseGlyph = "❚❚"

	controlsRow = 1
	waveRow     = 2
)

// ansiColors maps the styling knob color names to SGR codes.
var ansiColors = map[string]string{
	"black":   "30",
	"red":     "31",
	"green":   "32",
	"yellow":  "33",
	"blue":    "34",
	"magenta": "35",
	"cyan":    "36",
	"white":   "37",
	"gray":    "90",
}

var _ Surface = (*Term)(nil)

// Term renders the control surface to a terminal using ANSI cursor
// addressing. Each element caches its last written value so that repeated
// identical updates produce no output at all.
type Term struct {
	mu   sync.Mutex
	out  io.Writer
	opts engine.Options

	width   int
	handler func()

	iconSet     bool
	iconPlaying bool
	label       string
	labelSet    bool
	loading     bool
	loadingText string
	waveFrame   string
}

// NewTerm creates a terminal surface writing to out, width columns wide.
// The styling options come from the engine configuration and are applied
// only to the waveform region.
func NewTerm(out io.Writer, width int, opts engine.Options) *Term {
	if width <= 0 {
		width = 80
	}
	return &Term{out: out, width: width, opts: opts}
}

// SetPlayingIcon implements Surface.
func (t *Term) SetPlayingIcon(isPlaying bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.iconSet && t.iconPlaying == isPlaying {
		return
	}
	t.iconSet = true
	t.iconPlaying = isPlaying

	glyph := playGlyph + " "
	if isPlaying {
		glyph = pauseGlyph
	}
	fmt.Fprintf(t.out, "\033[%d;1H%-3s", controlsRow, glyph)
}

// SetTimeLabel implements Surface.
func (t *Term) SetTimeLabel(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.labelSet && t.label == text {
		return
	}
	t.labelSet = true
	t.label = text

	fmt.Fprintf(t.out, "\033[%d;5H\033[K%s", controlsRow, text)
}

// ShowLoading implements Surface.
func (t *Term) ShowLoading(percent *int) {
	text := "Loading..."
	if percent != nil {
		text = fmt.Sprintf("Loading: %d%%", *percent)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loading && t.loadingText == text {
		return
	}
	t.loading = true
	t.loadingText = text

	fmt.Fprintf(t.out, "\033[%d;1H\033[K%s", t.loadingRow(), text)
}

// HideLoading implements Surface.
func (t *Term) HideLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loading {
		return
	}
	t.loading = false
	t.loadingText = ""

	fmt.Fprintf(t.out, "\033[%d;1H\033[K", t.loadingRow())
}

// OnPlayToggleRequested implements Surface. Only one handler is active at
// a time; registering replaces the previous one.
func (t *Term) OnPlayToggleRequested(handler func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// Toggle fires the registered play/pause handler. The host key loop calls
// this when the user presses the toggle key.
func (t *Term) Toggle() {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()

	if handler != nil {
		handler()
	}
}

// DrawWaveform renders the waveform region from normalized peaks (0..1)
// with the playback cursor at the given progress fraction. The region is
// handed to the engine side by the host; the widget never calls this.
func (t *Term) DrawWaveform(peaks []float64, progress float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	frame := t.waveframe(peaks, progress)
	if frame == t.waveFrame {
		return
	}
	t.waveFrame = frame
	fmt.Fprint(t.out, frame)
}

// loadingRow returns the row of the loading indicator, below the
// waveform region.
func (t *Term) loadingRow() int {
	return waveRow + t.opts.Height
}

// blocks are eighth-block characters indexed by amplitude.
var blocks = []rune(" ▁▂▃▄▅▆▇█")

func (t *Term) waveframe(peaks []float64, progress float64) string {
	height := t.opts.Height
	if height < 1 {
		height = 1
	}
	step := t.opts.BarWidth + t.opts.BarGap
	if step < 1 {
		step = 1
	}
	cols := t.width / step
	if cols < 1 {
		cols = 1
	}

	cursor := int(progress * float64(cols))
	if cursor > cols {
		cursor = cols
	}
	cursorWidth := t.opts.CursorWidth
	if cursorWidth < 1 {
		cursorWidth = 1
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		fmt.Fprintf(&b, "\033[%d;1H\033[K", waveRow+row)
		if len(peaks) == 0 {
			continue
		}
		for col := 0; col < cols; col++ {
			sgr := sgrFor(t.opts.WaveColor)
			switch {
			case col >= cursor && col < cursor+cursorWidth:
				// Cursor band: reverse video over the progress color.
				sgr = "7;" + sgrFor(t.opts.ProgressColor)
			case col < cursor:
				sgr = sgrFor(t.opts.ProgressColor)
			}
			amp := peakAt(peaks, col, cols)
			b.WriteString(cell(amp, row, height, sgr, t.opts.BarWidth, t.opts.BarGap))
		}
	}
	b.WriteString("\033[0m")
	return b.String()
}

// peakAt samples the peak slice at the bucket covering the given column.
func peakAt(peaks []float64, col, cols int) float64 {
	idx := col * len(peaks) / cols
	if idx >= len(peaks) {
		idx = len(peaks) - 1
	}
	return peaks[idx]
}

// sgrFor maps a styling knob color name to its SGR code, defaulting to
// white for unknown names.
func sgrFor(color string) string {
	if sgr := ansiColors[color]; sgr != "" {
		return sgr
	}
	return ansiColors["white"]
}

// cell renders one bar column for one row. Rows are drawn top-down: a bar
// fills a row when its amplitude reaches the row's band, and the bottom
// row shows a partial block for small amplitudes.
func cell(amp float64, row, height int, sgr string, barWidth, barGap int) string {
	if barWidth < 1 {
		barWidth = 1
	}

	// Amplitude scaled to total eighth-blocks across all rows.
	level := amp * float64(height*8)
	bandTop := float64((height - row) * 8)
	bandBottom := bandTop - 8

	var ch rune
	switch {
	case level >= bandTop:
		ch = blocks[8]
	case level <= bandBottom:
		ch = blocks[0]
	default:
		ch = blocks[int(level-bandBottom)]
	}

	return "\033[" + sgr + "m" +
		strings.Repeat(string(ch), barWidth) +
		strings.Repeat(" ", barGap)
}
