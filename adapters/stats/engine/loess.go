package engine

import (
	"math"
	"sort"

	"nocturna/domain/series"
)

// Loess fits a locally weighted regression curve through a scatter of
// (x, y) points and evaluates it at every input x.
//
// For each evaluation point the m = max(2, ⌊alpha·N⌋) nearest neighbors by
// absolute x-distance are selected (expanding bidirectionally from the
// sorted-insertion point), weighted by a tricube kernel of distance
// normalized by the neighbor set's maximum distance, and fitted with a
// closed-form weighted linear regression. Bandwidth alpha ∈ (0,1] is the
// neighbor fraction. Non-finite pairs are dropped; fewer than two finite
// pairs yields an empty curve.
func Loess(x, y []float64, alpha float64) series.Curve {
	sx, sy := sortedFinitePairs(x, y)
	n := len(sx)
	if n < 2 {
		return series.Curve{X: []float64{}, Y: []float64{}}
	}
	if !(alpha > 0) {
		alpha = 0.5
	}
	if alpha > 1 {
		alpha = 1
	}

	m := int(alpha * float64(n))
	if m < 2 {
		m = 2
	}
	if m > n {
		m = n
	}

	out := series.Curve{X: make([]float64, n), Y: make([]float64, n)}
	for i, x0 := range sx {
		lo, hi := nearestSpan(sx, x0, m)
		out.X[i] = x0
		out.Y[i] = fitLocalLine(sx[lo:hi], sy[lo:hi], x0)
	}
	return out
}

// RunningQuantile traces the empirical quantile q of the k nearest
// neighbors' y-values across the scatter, evaluated at every input x.
// Neighbor selection matches Loess but with a fixed count instead of a
// bandwidth fraction.
func RunningQuantile(x, y []float64, k int, q float64) series.Curve {
	sx, sy := sortedFinitePairs(x, y)
	n := len(sx)
	if n == 0 {
		return series.Curve{X: []float64{}, Y: []float64{}}
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	out := series.Curve{X: make([]float64, n), Y: make([]float64, n)}
	for i, x0 := range sx {
		lo, hi := nearestSpan(sx, x0, k)
		out.X[i] = x0
		out.Y[i] = Quantile(sy[lo:hi], q)
	}
	return out
}

// sortedFinitePairs drops non-finite pairs and sorts the remainder by x.
func sortedFinitePairs(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	type pt struct{ x, y float64 }
	pts := make([]pt, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(x[i]) && isFinite(y[i]) {
			pts = append(pts, pt{x[i], y[i]})
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	sx := make([]float64, len(pts))
	sy := make([]float64, len(pts))
	for i, p := range pts {
		sx[i] = p.x
		sy[i] = p.y
	}
	return sx, sy
}

// nearestSpan returns the half-open range [lo, hi) of the m values in the
// sorted slice closest to x0, grown one element at a time from the
// insertion point toward whichever side is nearer.
func nearestSpan(sorted []float64, x0 float64, m int) (lo, hi int) {
	idx := sort.SearchFloat64s(sorted, x0)
	lo, hi = idx, idx
	for hi-lo < m {
		switch {
		case lo == 0:
			hi++
		case hi == len(sorted):
			lo--
		case x0-sorted[lo-1] <= sorted[hi]-x0:
			lo--
		default:
			hi++
		}
	}
	return lo, hi
}

// fitLocalLine fits a tricube-weighted line to the neighbor set and
// evaluates it at x0. Collapses to the weighted mean when the neighbors
// share a single x (degenerate normal equations).
func fitLocalLine(nx, ny []float64, x0 float64) float64 {
	maxDist := 0.0
	for _, xv := range nx {
		if d := math.Abs(xv - x0); d > maxDist {
			maxDist = d
		}
	}

	var sw, swx, swy, swxx, swxy float64
	for i, xv := range nx {
		w := 1.0
		if maxDist > 0 {
			w = tricube(math.Abs(xv-x0) / maxDist)
		}
		sw += w
		swx += w * xv
		swy += w * ny[i]
		swxx += w * xv * xv
		swxy += w * xv * ny[i]
	}
	if sw == 0 {
		return math.NaN()
	}

	den := sw*swxx - swx*swx
	if math.Abs(den) < 1e-12*math.Max(1, math.Abs(swxx)) {
		return swy / sw
	}
	slope := (sw*swxy - swx*swy) / den
	intercept := (swy - slope*swx) / sw
	return intercept + slope*x0
}

// tricube is the LOESS kernel (1−|u|³)³ on [0,1].
func tricube(u float64) float64 {
	if u >= 1 {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}
