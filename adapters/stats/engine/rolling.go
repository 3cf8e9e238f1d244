package engine

import (
	"math"
	"sort"

	"nocturna/domain/core"
	"nocturna/domain/series"
)

// RollingConfig controls the rolling window computation.
type RollingConfig struct {
	Windows   []int   // window lengths in calendar days
	Threshold float64 // compliance threshold (values ≥ Threshold comply)
	Alpha     float64 // significance level for the CIs; 0 means DefaultAlpha
}

// ComputeRolling produces one RollingResult per requested window length.
//
// Windows slide over calendar days, not sample counts: at index i the window
// covers the days [day(i)−w+1, day(i)] inclusive, so gaps in the input
// shrink the effective window instead of reaching further back in time.
// NaN values stay in the series for alignment but never enter a window's
// population. Input may be unsorted; it is sorted defensively.
func ComputeRolling(s series.Series, cfg RollingConfig) []series.RollingResult {
	sorted := s.Sorted()
	z := criticalZ(cfg.Alpha)

	results := make([]series.RollingResult, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		if w < 1 {
			continue
		}
		results = append(results, rollOneWindow(sorted, w, cfg.Threshold, z))
	}
	return results
}

func rollOneWindow(sorted series.Series, w int, threshold, z float64) series.RollingResult {
	n := len(sorted)
	res := series.RollingResult{
		Window:      w,
		Dates:       sorted.Dates(),
		Avg:         make([]float64, n),
		AvgCILow:    make([]float64, n),
		AvgCIHigh:   make([]float64, n),
		Median:      make([]float64, n),
		MedianCILow: make([]float64, n),
		MedianCIHi:  make([]float64, n),
		Compliance:  make([]float64, n),
	}

	win := windowState{}
	start := 0
	for i := 0; i < n; i++ {
		win.add(sorted[i].Value, threshold)

		// Evict samples whose calendar day fell out of the window.
		minDay := core.DayNumber(sorted[i].Date) - w + 1
		for core.DayNumber(sorted[start].Date) < minDay {
			win.remove(sorted[start].Value, threshold)
			start++
		}

		res.Avg[i], res.AvgCILow[i], res.AvgCIHigh[i] = win.meanCI(z)
		res.Median[i] = win.median()
		res.MedianCILow[i], res.MedianCIHi[i] = win.medianCI(z)
		res.Compliance[i] = win.compliancePct()
	}
	return res
}

// windowState tracks one sliding window incrementally: running sum and
// sum-of-squares for O(1) mean/variance, a sorted slice for the median
// (removal by value), and a compliance counter.
type windowState struct {
	sum       float64
	sumSq     float64
	count     int
	compliant int
	vals      []float64 // sorted, finite values only
}

func (ws *windowState) add(v, threshold float64) {
	if !isFinite(v) {
		return
	}
	ws.sum += v
	ws.sumSq += v * v
	ws.count++
	if v >= threshold {
		ws.compliant++
	}
	idx := sort.SearchFloat64s(ws.vals, v)
	ws.vals = append(ws.vals, 0)
	copy(ws.vals[idx+1:], ws.vals[idx:])
	ws.vals[idx] = v
}

func (ws *windowState) remove(v, threshold float64) {
	if !isFinite(v) {
		return
	}
	ws.sum -= v
	ws.sumSq -= v * v
	ws.count--
	if v >= threshold {
		ws.compliant--
	}
	idx := sort.SearchFloat64s(ws.vals, v)
	if idx < len(ws.vals) && ws.vals[idx] == v {
		ws.vals = append(ws.vals[:idx], ws.vals[idx+1:]...)
	}
}

// meanCI returns the window mean and its normal-approximation interval
// mean ± z·s/√n. The interval is NaN below two samples.
func (ws *windowState) meanCI(z float64) (mean, lo, hi float64) {
	if ws.count == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	fn := float64(ws.count)
	mean = ws.sum / fn
	if ws.count < 2 {
		return mean, math.NaN(), math.NaN()
	}
	variance := (ws.sumSq - ws.sum*ws.sum/fn) / (fn - 1)
	if variance < 0 {
		variance = 0 // numerical jitter on constant windows
	}
	se := math.Sqrt(variance) / math.Sqrt(fn)
	return mean, mean - z*se, mean + z*se
}

func (ws *windowState) median() float64 {
	n := len(ws.vals)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return ws.vals[n/2]
	}
	return (ws.vals[n/2-1] + ws.vals[n/2]) / 2
}

// medianCI is the binomial order-statistic approximation: the interval is
// bounded by the order statistics at n/2 ∓ z·√(n/4), clamped to the window.
func (ws *windowState) medianCI(z float64) (lo, hi float64) {
	n := len(ws.vals)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	fn := float64(n)
	spread := z * math.Sqrt(fn*0.25)
	kLo := int(math.Floor(fn*0.5 - spread))
	kHi := int(math.Ceil(fn*0.5 + spread))
	if kLo < 0 {
		kLo = 0
	}
	if kHi > n-1 {
		kHi = n - 1
	}
	return ws.vals[kLo], ws.vals[kHi]
}

func (ws *windowState) compliancePct() float64 {
	if ws.count == 0 {
		return math.NaN()
	}
	return 100 * float64(ws.compliant) / float64(ws.count)
}
