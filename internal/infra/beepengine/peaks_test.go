package beepengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceStreamer is an in-memory StreamSeekCloser over prepared samples.
type sliceStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *sliceStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := copy(out, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

func (s *sliceStreamer) Len() int { return len(s.samples) }

func (s *sliceStreamer) Position() int { return s.pos }

func (s *sliceStreamer) Seek(p int) error {
	s.pos = p
	return nil
}

func (s *sliceStreamer) Close() error { return nil }

func TestComputePeaks(t *testing.T) {
	// First half silence, second half a full-scale square wave: the
	// second bucket must dominate and the first stay at zero.
	samples := make([][2]float64, 1000)
	for i := 500; i < 1000; i++ {
		samples[i] = [2]float64{1, 1}
	}
	s := &sliceStreamer{samples: samples}

	peaks, err := computePeaks(s, 2)
	require.NoError(t, err)
	require.Len(t, peaks, 2)

	assert.Zero(t, peaks[0])
	assert.Equal(t, 1.0, peaks[1], "full-scale signal clamps to 1")
	assert.Zero(t, s.Position(), "streamer must be rewound after the scan")
}

func TestComputePeaks_EmptyStreamer(t *testing.T) {
	peaks, err := computePeaks(&sliceStreamer{}, 8)
	require.NoError(t, err)
	assert.Nil(t, peaks)
}

func TestRebucket(t *testing.T) {
	peaks := []float64{0.1, 0.9, 0.2, 0.3, 0.8, 0.1, 0.5, 0.4}

	tests := []struct {
		name    string
		buckets int
		want    []float64
	}{
		{
			name:    "downsample keeps range maxima",
			buckets: 4,
			want:    []float64{0.9, 0.3, 0.8, 0.5},
		},
		{
			name:    "same size copies",
			buckets: 8,
			want:    peaks,
		},
		{
			name:    "upsample request returns original resolution",
			buckets: 16,
			want:    peaks,
		},
		{
			name:    "zero buckets",
			buckets: 0,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rebucket(peaks, tt.buckets))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name  string
		read  int64
		total int64
		want  int
	}{
		{
			name:  "start",
			read:  0,
			total: 1000,
			want:  0,
		},
		{
			name:  "halfway",
			read:  500,
			total: 1000,
			want:  50,
		},
		{
			name:  "complete",
			read:  1000,
			total: 1000,
			want:  100,
		},
		{
			name:  "overshoot clamps",
			read:  1500,
			total: 1000,
			want:  100,
		},
		{
			name:  "unknown total",
			read:  500,
			total: -1,
			want:  -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progressPercent(tt.read, tt.total))
		})
	}
}
