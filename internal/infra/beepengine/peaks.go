package beepengine

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
)

// computePeaks streams the whole resource once, computing the RMS energy
// of each bucket normalized to 0..1, then rewinds the streamer. The
// result drives the waveform region.
func computePeaks(s beep.StreamSeekCloser, buckets int) ([]float64, error) {
	total := s.Len()
	if total <= 0 || buckets <= 0 {
		return nil, nil
	}

	per := total / buckets
	if per == 0 {
		per = 1
	}

	sums := make([]float64, buckets)
	counts := make([]int, buckets)

	var chunk [512][2]float64
	idx := 0
	for {
		n, ok := s.Stream(chunk[:])
		for i := 0; i < n; i++ {
			bucket := idx / per
			if bucket >= buckets {
				bucket = buckets - 1
			}
			mono := (chunk[i][0] + chunk[i][1]) / 2
			sums[bucket] += mono * mono
			counts[bucket]++
			idx++
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan audio for peaks")
	}

	peaks := make([]float64, buckets)
	for i := range peaks {
		if counts[i] == 0 {
			continue
		}
		rms := math.Sqrt(sums[i] / float64(counts[i]))
		// RMS of typical program material sits well below full scale;
		// boost before clamping so quiet passages stay visible.
		peaks[i] = math.Min(rms*5, 1)
	}

	if err := s.Seek(0); err != nil {
		return nil, errors.Wrap(err, "failed to rewind after peak scan")
	}
	return peaks, nil
}

// rebucket downsamples peaks to the requested bucket count by taking the
// maximum of each covered range.
func rebucket(peaks []float64, buckets int) []float64 {
	if buckets <= 0 || len(peaks) == 0 {
		return nil
	}
	if buckets >= len(peaks) {
		out := make([]float64, len(peaks))
		copy(out, peaks)
		return out
	}

	out := make([]float64, buckets)
	for i := 0; i < buckets; i++ {
		lo := i * len(peaks) / buckets
		hi := (i + 1) * len(peaks) / buckets
		if hi <= lo {
			hi = lo + 1
		}
		max := 0.0
		for _, p := range peaks[lo:hi] {
			if p > max {
				max = p
			}
		}
		out[i] = max
	}
	return out
}
