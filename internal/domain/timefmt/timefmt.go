// Package timefmt provides playback time display formatting.
package timefmt

import (
	"fmt"
	"math"
)

// Clock formats a position in seconds as "M:SS". Minutes are unbounded
// (no hour rollover). The seconds remainder is rounded half away from
// zero, so 59.5 displays as "1:00".
// Negative or non-finite input clamps to "0:00"; the label is cosmetic,
// so a caller bug is not worth a panic.
func Clock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}

	// math.Round rounds half away from zero.
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Range formats a current position and total duration as "M:SS / M:SS".
func Range(current, duration float64) string {
	return Clock(current) + " / " + Clock(duration)
}
