// Package engine is the statistical computation core: calendar-aware rolling
// statistics, trend/seasonal decomposition, change-point and breakpoint
// detection, autocorrelation, LOESS smoothing, the Mann–Whitney U test, and
// Kaplan–Meier survival estimation.
//
// Every function here is a pure, synchronous computation over caller-owned
// slices: no shared mutable state, no I/O, no memoization. Calls are safe to
// run concurrently from independent call sites (one per chart) because each
// call allocates and owns its buffers. Degenerate input degrades to NaN
// scalars or empty slices rather than errors, so interactive consumers keep
// rendering with partial data.
package engine

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the engine-wide default significance level (95% intervals).
const DefaultAlpha = 0.05

// criticalZ returns the two-sided standard-normal critical value for a
// significance level alpha (1.96 for alpha = 0.05). Out-of-range alphas fall
// back to the default rather than producing a degenerate interval.
func criticalZ(alpha float64) float64 {
	if !(alpha > 0 && alpha < 1) {
		alpha = DefaultAlpha
	}
	return distuv.UnitNormal.Quantile(1 - alpha/2)
}

// normalCDF is the standard normal CDF.
func normalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
