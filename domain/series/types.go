package series

import (
	"math"
	"sort"
	"time"

	"nocturna/domain/core"
)

// ============================================================================
// INPUT MODEL
// ============================================================================

// TimePoint is one daily observation. Value is NaN when the day was recorded
// but no usable measurement exists; days with no record at all are simply
// absent from the series (gaps shrink calendar windows, they are never
// zero-padded).
type TimePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of daily observations. Callers may construct
// it unsorted; every engine entry point calls Sorted() defensively before
// computing, so sortedness is never a precondition of the public API.
type Series []TimePoint

// Sorted returns a copy of the series ordered ascending by date.
// The receiver is never mutated.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Values returns the value column as a fresh slice.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.Value
	}
	return vals
}

// Dates returns the date column as a fresh slice.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, p := range s {
		dates[i] = p.Date
	}
	return dates
}

// FiniteCount returns the number of finite values in the series.
func (s Series) FiniteCount() int {
	n := 0
	for _, p := range s {
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			n++
		}
	}
	return n
}

// ============================================================================
// ENGINE RESULTS
// ============================================================================
// Result records are created fresh per call and owned by the caller. Arrays
// are length-matched to the input series where the field doc says so; NaN is
// the documented "no result at this index" marker throughout.

// RollingResult holds calendar-day rolling statistics for one window length.
// Every slice has the same length as the input series; entry i covers the
// calendar days [day(i)−Window+1, day(i)] inclusive.
type RollingResult struct {
	Window      int         `json:"window_days"`
	Dates       []time.Time `json:"dates"`
	Avg         []float64   `json:"avg"`
	AvgCILow    []float64   `json:"avg_ci_low"`
	AvgCIHigh   []float64   `json:"avg_ci_high"`
	Median      []float64   `json:"median"`
	MedianCILow []float64   `json:"median_ci_low"`
	MedianCIHi  []float64   `json:"median_ci_high"`
	Compliance  []float64   `json:"compliance"` // percent of in-window values ≥ threshold
}

// Decomposition is an additive trend/seasonal/residual split. All three
// slices match the input length and satisfy
// trend[i]+seasonal[i]+residual[i] == value[i] wherever value[i] is finite.
type Decomposition struct {
	Trend        []float64 `json:"trend"`
	Seasonal     []float64 `json:"seasonal"`
	Residual     []float64 `json:"residual"`
	SeasonLength int       `json:"season_length"`
}

// CorrelogramEntry is one lag of an ACF or PACF.
// Pairs counts the valid (pairwise-finite) comparisons behind the value; it
// can be smaller than n−lag when the series has missing values.
type CorrelogramEntry struct {
	Lag   int     `json:"lag"`
	R     float64 `json:"r"`
	Pairs int     `json:"pairs"`
}

// Correlogram is an ACF or PACF with its white-noise confidence band.
type Correlogram struct {
	Entries   []CorrelogramEntry `json:"entries"`
	ConfBound float64            `json:"conf_bound"` // ±z/√n band for "no autocorrelation"
}

// ChangePoint marks the first index of a new piecewise-constant regime.
type ChangePoint struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date"`
}

// Breakpoint marks a qualifying crossing between two rolling averages.
type Breakpoint struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date"`
	Delta float64   `json:"delta"` // short−long at the crossing index
}

// Curve is a smoothed (x, y) trace, e.g. a LOESS fit or a running-quantile
// band edge. X is ascending.
type Curve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// MannWhitneyMethod reports which null distribution produced the p-value.
type MannWhitneyMethod string

const (
	MethodExact  MannWhitneyMethod = "exact"
	MethodNormal MannWhitneyMethod = "normal"
)

// MannWhitneyResult is a two-sided Mann–Whitney U test outcome.
// Effect is the rank-biserial correlation 2·CL−1 with CL = U2/(n1·n2): +1
// means every value in group B exceeds every value in group A, so swapping
// the groups negates the effect while leaving P unchanged.
type MannWhitneyResult struct {
	U            float64           `json:"u"`
	U1           float64           `json:"u1"`
	U2           float64           `json:"u2"`
	Z            float64           `json:"z"`
	P            float64           `json:"p"`
	Effect       float64           `json:"effect"`
	EffectCILow  float64           `json:"effect_ci_low"`
	EffectCIHigh float64           `json:"effect_ci_high"`
	Method       MannWhitneyMethod `json:"method"`
	N1           int               `json:"n1"`
	N2           int               `json:"n2"`
}

// SurvivalCurve is a Kaplan–Meier estimate over uncensored durations, one
// entry per distinct observed duration. Survival is non-increasing in [0,1];
// Lower/Upper are Greenwood log-log bounds, NaN wherever Survival is exactly
// 0 or 1 (the link is undefined there).
type SurvivalCurve struct {
	Times    []float64 `json:"times"`
	Survival []float64 `json:"survival"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

// SeriesSummary is the descriptive profile of one series.
type SeriesSummary struct {
	Key     core.SeriesKey `json:"key,omitempty"`
	N       int            `json:"n"`
	Finite  int            `json:"finite"`
	Mean    float64        `json:"mean"`
	StdDev  float64        `json:"std_dev"`
	Min     float64        `json:"min"`
	Max     float64        `json:"max"`
	Median  float64        `json:"median"`
	Q25     float64        `json:"q25"`
	Q75     float64        `json:"q75"`
	First   time.Time      `json:"first_date"`
	Last    time.Time      `json:"last_date"`
	DaySpan int            `json:"day_span"`
}
