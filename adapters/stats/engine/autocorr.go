package engine

import (
	"math"

	"nocturna/domain/series"
)

// ACF computes the autocorrelation function for lags 0..maxLag.
//
// The value at lag k is the Pearson correlation between value[i] and
// value[i−k] over every i where both are finite (pairwise deletion), and
// each entry reports the number of valid pairs actually used — fewer than
// n−k when the series has missing values. ConfBound is the ±z/√n band for
// "no autocorrelation", with n the count of finite series values.
func ACF(s series.Series, maxLag int, alpha float64) series.Correlogram {
	vals := s.Sorted().Values()
	return correlogram(vals, maxLag, alpha, acfAtLag)
}

// PACF computes the partial autocorrelation function for lags 1..maxLag.
//
// The value at lag k is the correlation between value[i] and value[i−k]
// with the intermediate lags value[i−1]..value[i−k+1] regressed out via
// OLS residualization; lag 1 has no intermediates and equals ACF lag 1.
func PACF(s series.Series, maxLag int, alpha float64) series.Correlogram {
	vals := s.Sorted().Values()
	cg := correlogram(vals, maxLag, alpha, pacfAtLag)
	// Drop the trivial lag-0 entry: PACF starts at lag 1.
	if len(cg.Entries) > 0 && cg.Entries[0].Lag == 0 {
		cg.Entries = cg.Entries[1:]
	}
	return cg
}

func correlogram(vals []float64, maxLag int, alpha float64, at func([]float64, int) (float64, int)) series.Correlogram {
	n := len(vals)
	finite := 0
	for _, v := range vals {
		if isFinite(v) {
			finite++
		}
	}

	bound := math.NaN()
	if finite > 0 {
		bound = criticalZ(alpha) / math.Sqrt(float64(finite))
	}

	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 || n == 0 {
		return series.Correlogram{Entries: []series.CorrelogramEntry{}, ConfBound: bound}
	}

	entries := make([]series.CorrelogramEntry, 0, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		r, pairs := at(vals, k)
		entries = append(entries, series.CorrelogramEntry{Lag: k, R: r, Pairs: pairs})
	}
	return series.Correlogram{Entries: entries, ConfBound: bound}
}

func acfAtLag(vals []float64, k int) (float64, int) {
	n := len(vals)
	if k == 0 {
		// Correlation of the series with itself: 1 given any variance.
		r, pairs := PearsonPairs(vals, vals)
		return r, pairs
	}
	return PearsonPairs(vals[k:], vals[:n-k])
}

func pacfAtLag(vals []float64, k int) (float64, int) {
	n := len(vals)
	if k == 0 {
		r, pairs := PearsonPairs(vals, vals)
		return r, pairs
	}

	x := vals[k:]
	y := vals[:n-k]
	if k == 1 {
		return PearsonPairs(x, y)
	}

	// Intermediate lags 1..k−1, aligned with x and y.
	controls := make([][]float64, 0, k-1)
	for j := 1; j < k; j++ {
		controls = append(controls, vals[k-j:n-j])
	}

	pairs := 0
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		ok := true
		for _, c := range controls {
			if !isFinite(c[i]) {
				ok = false
				break
			}
		}
		if ok {
			pairs++
		}
	}
	return PartialCorrelation(x, y, controls), pairs
}
