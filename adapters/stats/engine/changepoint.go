package engine

import (
	"nocturna/domain/series"
)

// DetectChangePoints segments a series into piecewise-constant regimes by
// minimizing total within-segment squared error plus a per-segment penalty,
// and returns the first index of every regime after the first.
//
// Segment cost over [i..j] is the sum of squared errors about the segment's
// own mean, computed in O(1) from prefix sums of value and value². The
// dynamic program is the direct O(n²) recursion
//
//	F[0] = −penalty
//	F[t] = min over k<t of F[k] + cost(k, t−1) + penalty
//
// with prev[] backtracking from t=n. Quadratic cost is fine for the expected
// input sizes (a few years of daily data). Non-finite values are excluded
// before segmentation; reported indices and dates refer to the original
// series. An empty slice means no series-level evidence for a break.
func DetectChangePoints(s series.Series, penalty float64) []series.ChangePoint {
	sorted := s.Sorted()

	// Keep only finite values, remembering where they came from.
	var vals []float64
	var origIdx []int
	for i, p := range sorted {
		if isFinite(p.Value) {
			vals = append(vals, p.Value)
			origIdx = append(origIdx, i)
		}
	}
	n := len(vals)
	if n < 2 || penalty < 0 {
		return []series.ChangePoint{}
	}

	prefix := make([]float64, n+1)
	prefixSq := make([]float64, n+1)
	for i, v := range vals {
		prefix[i+1] = prefix[i] + v
		prefixSq[i+1] = prefixSq[i] + v*v
	}
	// cost of the segment covering clean indices [i, j] inclusive
	cost := func(i, j int) float64 {
		cnt := float64(j - i + 1)
		sum := prefix[j+1] - prefix[i]
		sumSq := prefixSq[j+1] - prefixSq[i]
		sse := sumSq - sum*sum/cnt
		if sse < 0 {
			sse = 0
		}
		return sse
	}

	f := make([]float64, n+1)
	prev := make([]int, n+1)
	f[0] = -penalty
	for t := 1; t <= n; t++ {
		best := f[0] + cost(0, t-1) + penalty
		bestK := 0
		for k := 1; k < t; k++ {
			c := f[k] + cost(k, t-1) + penalty
			if c < best {
				best = c
				bestK = k
			}
		}
		f[t] = best
		prev[t] = bestK
	}

	// Backtrack the segment starts; drop the leading zero (start of the
	// first regime is not a change).
	var starts []int
	for t := n; t > 0; t = prev[t] {
		starts = append(starts, prev[t])
	}
	out := []series.ChangePoint{}
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] == 0 {
			continue
		}
		oi := origIdx[starts[i]]
		out = append(out, series.ChangePoint{Index: oi, Date: sorted[oi].Date})
	}
	return out
}
