package engine

import (
	"math"

	"nocturna/domain/series"
)

// Decompose splits a series additively into trend, a repeating seasonal
// pattern of length seasonLength, and residual noise.
//
// Steps: centered moving-average trend with a window of roughly one season
// (the window shrinks at the edges, so every finite input gets a finite
// trend value), detrend, average the detrended values at each phase
// i mod seasonLength (zero-centered), tile the pattern across the series,
// residual = value − trend − seasonal. The reconstruction identity
// trend+seasonal+residual == value holds exactly wherever the value is
// finite. NaN values are excluded from all fitting and reappear only in
// the residual.
//
// Degenerate input (series shorter than the season, single point, season
// < 2) returns trend = copy of input, seasonal = zeros, residual = zeros.
func Decompose(s series.Series, seasonLength int) series.Decomposition {
	sorted := s.Sorted()
	vals := sorted.Values()
	n := len(vals)

	if n <= 1 || seasonLength < 2 || n < seasonLength {
		return series.Decomposition{
			Trend:        vals,
			Seasonal:     make([]float64, n),
			Residual:     make([]float64, n),
			SeasonLength: seasonLength,
		}
	}

	trend := centeredTrend(vals, seasonLength)

	detrended := make([]float64, n)
	for i := range vals {
		detrended[i] = vals[i] - trend[i] // NaN propagates for missing values
	}

	// One seasonal value per phase, averaged over finite detrended samples.
	pattern := make([]float64, seasonLength)
	counts := make([]int, seasonLength)
	for i, d := range detrended {
		if isFinite(d) {
			pattern[i%seasonLength] += d
			counts[i%seasonLength]++
		}
	}
	filled := 0
	patternSum := 0.0
	for p := range pattern {
		if counts[p] > 0 {
			pattern[p] /= float64(counts[p])
			patternSum += pattern[p]
			filled++
		}
	}
	// Center the pattern so the seasonal component carries no level.
	if filled > 0 {
		offset := patternSum / float64(filled)
		for p := range pattern {
			if counts[p] > 0 {
				pattern[p] -= offset
			}
		}
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := range vals {
		seasonal[i] = pattern[i%seasonLength]
		residual[i] = vals[i] - trend[i] - seasonal[i]
	}

	return series.Decomposition{
		Trend:        trend,
		Seasonal:     seasonal,
		Residual:     residual,
		SeasonLength: seasonLength,
	}
}

// centeredTrend is a centered moving average over ±window/2 samples,
// clipped at the series edges and skipping non-finite values. An index
// whose whole neighborhood is non-finite gets NaN.
func centeredTrend(vals []float64, window int) []float64 {
	n := len(vals)
	half := window / 2
	trend := make([]float64, n)
	for i := range vals {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		sum := 0.0
		cnt := 0
		for j := lo; j <= hi; j++ {
			if isFinite(vals[j]) {
				sum += vals[j]
				cnt++
			}
		}
		if cnt == 0 {
			trend[i] = math.NaN()
		} else {
			trend[i] = sum / float64(cnt)
		}
	}
	return trend
}
