package engine

import (
	"math"
	"time"

	"nocturna/domain/series"
)

// DetectBreakpoints flags crossings between a short and a long rolling
// average. Index i qualifies when the sign of short−long flips relative to
// the last non-zero sign AND the gap at i is at least minDelta. A tie at
// exactly zero is not a crossing by itself; the sign state carries forward
// until a genuine flip occurs.
//
// The three input slices must be index-aligned (as produced by
// ComputeRolling on the same series); indices where either average is
// non-finite are skipped without resetting the sign state.
func DetectBreakpoints(dates []time.Time, short, long []float64, minDelta float64) []series.Breakpoint {
	n := len(dates)
	if len(short) < n {
		n = len(short)
	}
	if len(long) < n {
		n = len(long)
	}

	var out []series.Breakpoint
	prevSign := 0
	for i := 0; i < n; i++ {
		delta := short[i] - long[i]
		if !isFinite(delta) {
			continue
		}
		sign := signOf(delta)
		if sign == 0 {
			continue
		}
		if prevSign != 0 && sign != prevSign && math.Abs(delta) >= minDelta {
			out = append(out, series.Breakpoint{Index: i, Date: dates[i], Delta: delta})
		}
		prevSign = sign
	}
	return out
}

func signOf(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
