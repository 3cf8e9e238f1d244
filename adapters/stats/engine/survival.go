package engine

import (
	"math"
	"sort"

	"nocturna/domain/series"
)

// KaplanMeier estimates the survival function of a set of uncensored
// durations (e.g. hours of nightly usage, nights until dropout).
//
// Durations are treated as exact event times: at each distinct time t with
// d events out of n still at risk, the survival estimate multiplies by
// (1 − d/n). The curve has one entry per distinct duration, is
// non-increasing, starts below 1 and reaches 0 at the largest duration.
//
// Lower/Upper are log-log (complementary log) confidence bounds built on
// Greenwood's variance: S^exp(±z·θ) with θ = √(Σ d/(n(n−d))) / log S. The
// link is undefined at S ∈ {0, 1}, so those entries carry NaN bounds.
// Only positive durations are events; non-finite and non-positive values
// are dropped (a zero duration is not an observed usage night). No usable
// durations yields an empty curve.
func KaplanMeier(durations []float64, alpha float64) series.SurvivalCurve {
	clean := make([]float64, 0, len(durations))
	for _, d := range durations {
		if isFinite(d) && d > 0 {
			clean = append(clean, d)
		}
	}
	if len(clean) == 0 {
		return series.SurvivalCurve{
			Times:    []float64{},
			Survival: []float64{},
			Lower:    []float64{},
			Upper:    []float64{},
		}
	}
	sort.Float64s(clean)

	z := criticalZ(alpha)
	curve := series.SurvivalCurve{}

	surv := 1.0
	greenwood := 0.0 // running Σ d/(n(n−d))
	atRisk := len(clean)
	i := 0
	for i < len(clean) {
		t := clean[i]
		d := 0
		for i < len(clean) && clean[i] == t {
			d++
			i++
		}

		n := float64(atRisk)
		surv *= 1 - float64(d)/n
		if atRisk > d {
			greenwood += float64(d) / (n * (n - float64(d)))
		}
		atRisk -= d

		lo, hi := logLogBounds(surv, greenwood, z)
		curve.Times = append(curve.Times, t)
		curve.Survival = append(curve.Survival, surv)
		curve.Lower = append(curve.Lower, lo)
		curve.Upper = append(curve.Upper, hi)
	}
	return curve
}

// logLogBounds transforms Greenwood's variance through the log-log link.
// Bounds land in (0,1) by construction and never cross the estimate.
func logLogBounds(surv, greenwood, z float64) (lo, hi float64) {
	if surv <= 0 || surv >= 1 {
		return math.NaN(), math.NaN()
	}
	logS := math.Log(surv)
	theta := math.Sqrt(greenwood) / logS
	lo = math.Pow(surv, math.Exp(z*math.Abs(theta)))
	hi = math.Pow(surv, math.Exp(-z*math.Abs(theta)))
	return lo, hi
}
