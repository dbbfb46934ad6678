package beepengine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonearm/wavedeck/internal/engine"
)

func TestClose_ConcurrentWithEmission(t *testing.T) {
	e := New(Config{Tick: time.Millisecond})

	// Drain the stream so emitters never hit a full buffer.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range e.events {
		}
	}()

	// Hammer the same path tick and handleFinish use while Close runs.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				e.mu.Lock()
				e.emitLocked(engine.Event{Type: engine.EventAudioProcess, Seconds: float64(j)})
				e.mu.Unlock()
			}
		}()
	}

	require.NotPanics(t, func() { e.Close() })
	wg.Wait()

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("event stream was not closed")
	}
}

func TestClose_Idempotent(t *testing.T) {
	e := New(Config{})
	e.Close()
	require.NotPanics(t, func() { e.Close() })

	// A straggler emitting after shutdown must be a silent no-op.
	require.NotPanics(t, func() {
		e.mu.Lock()
		e.emitLocked(engine.Event{Type: engine.EventFinish})
		e.mu.Unlock()
	})

	_, open := <-e.events
	assert.False(t, open, "event stream must be closed")
}
