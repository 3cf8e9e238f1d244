package engine

import (
	"math"

	"nocturna/domain/series"
)

// exactLimit is the largest pooled sample size for which the exact null
// distribution of the rank sum is enumerated; above it the tie-corrected
// normal approximation takes over.
const exactLimit = 28

// MannWhitneyU runs the two-sided Mann–Whitney U test on two independent
// groups.
//
// Pooled values are ranked with average ranks for ties, U1 = R1 − n1(n1+1)/2,
// U2 = n1·n2 − U1, U = min(U1, U2). For pooled sizes ≤ 28 the p-value is
// exact: the null distribution of group A's rank sum is built by subset-sum
// dynamic programming over ×2-scaled ranks (scaling keeps tie-averaged
// ranks integral) and the two-sided tail is the fraction of
// equally-or-more-extreme rank sums among all C(n, n1) assignments. Larger
// samples use the tie-corrected normal approximation.
//
// Effect is the rank-biserial correlation 2·CL − 1 with CL = U2/(n1·n2),
// the probability that a random B value exceeds a random A value; its CI
// maps a Wilson score interval on CL through the same linear transform.
// Non-finite values are dropped per group; an empty group yields NaN
// statistics rather than an error.
func MannWhitneyU(groupA, groupB []float64, alpha float64) series.MannWhitneyResult {
	a := finiteOnly(groupA)
	b := finiteOnly(groupB)
	n1, n2 := len(a), len(b)

	if n1 == 0 || n2 == 0 {
		nan := math.NaN()
		return series.MannWhitneyResult{
			U: nan, U1: nan, U2: nan, Z: nan, P: nan,
			Effect: nan, EffectCILow: nan, EffectCIHigh: nan,
			Method: series.MethodNormal, N1: n1, N2: n2,
		}
	}

	pooled := make([]float64, 0, n1+n2)
	pooled = append(pooled, a...)
	pooled = append(pooled, b...)
	ranks := Ranks(pooled)

	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}
	u1 := r1 - float64(n1*(n1+1))/2
	u2 := float64(n1*n2) - u1
	u := math.Min(u1, u2)

	z, pNormal := mannWhitneyNormal(u, ranks, n1, n2)

	method := series.MethodNormal
	p := pNormal
	if n1+n2 <= exactLimit {
		method = series.MethodExact
		p = mannWhitneyExact(ranks, r1, n1)
	}

	cl := u2 / float64(n1*n2)
	ciLo, ciHi := wilsonInterval(cl, float64(n1*n2), criticalZ(alpha))

	return series.MannWhitneyResult{
		U:  u,
		U1: u1,
		U2: u2,
		Z:  z,
		P:  p,
		// 2·CL−1 maps [0,1] onto [−1,1]; swapping the groups swaps U1/U2
		// and therefore negates the effect.
		Effect:       2*cl - 1,
		EffectCILow:  2*ciLo - 1,
		EffectCIHigh: 2*ciHi - 1,
		Method:       method,
		N1:           n1,
		N2:           n2,
	}
}

// mannWhitneyNormal is the tie-corrected normal approximation:
// sigma = √(n1·n2·(n+1)/12 · (1 − Σ(t³−t)/(n³−n))).
func mannWhitneyNormal(u float64, ranks []float64, n1, n2 int) (z, p float64) {
	n := n1 + n2
	mean := float64(n1*n2) / 2

	// Tie groups show up as repeated average ranks.
	tieCounts := map[float64]int{}
	for _, r := range ranks {
		tieCounts[r]++
	}
	tieSum := 0.0
	for _, t := range tieCounts {
		if t > 1 {
			ft := float64(t)
			tieSum += ft*ft*ft - ft
		}
	}
	fn := float64(n)
	tieCorrection := 1.0
	if n > 1 {
		tieCorrection = 1 - tieSum/(fn*fn*fn-fn)
	}

	sigma := math.Sqrt(float64(n1*n2) * (fn + 1) / 12 * tieCorrection)
	if sigma == 0 || math.IsNaN(sigma) {
		return math.NaN(), math.NaN()
	}
	z = (u - mean) / sigma
	p = 2 * (1 - normalCDF(math.Abs(z)))
	if p > 1 {
		p = 1
	}
	return z, p
}

// mannWhitneyExact enumerates the null distribution of group A's rank sum
// over all C(n, n1) equally likely group assignments.
//
// Ranks are scaled ×2 so tie-averaged half ranks become integers; the DP
// table counts, per chosen-subset size and scaled sum, how many subsets
// realize that sum. Counts are held in float64 — C(28,14) ≈ 4·10⁷ is far
// inside exact integer range.
func mannWhitneyExact(ranks []float64, r1 float64, n1 int) float64 {
	n := len(ranks)
	scaled := make([]int, n)
	total := 0
	for i, r := range ranks {
		scaled[i] = int(math.Round(2 * r))
		total += scaled[i]
	}

	// dp[j][s] = number of j-element subsets with scaled rank sum s.
	dp := make([][]float64, n1+1)
	for j := range dp {
		dp[j] = make([]float64, total+1)
	}
	dp[0][0] = 1
	for _, r := range scaled {
		for j := n1; j >= 1; j-- {
			for s := total; s >= r; s-- {
				if dp[j-1][s-r] != 0 {
					dp[j][s] += dp[j-1][s-r]
				}
			}
		}
	}

	// Two-sided tail by absolute deviation of the rank sum from its null
	// mean n1(n+1)/2 (×2 scaled: n1(n+1)).
	nullMean := float64(n1 * (n + 1))
	obsDev := math.Abs(math.Round(2*r1) - nullMean)

	var assignments, extreme float64
	for s, cnt := range dp[n1] {
		if cnt == 0 {
			continue
		}
		assignments += cnt
		if math.Abs(float64(s)-nullMean) >= obsDev-1e-9 {
			extreme += cnt
		}
	}
	if assignments == 0 {
		return math.NaN()
	}
	p := extreme / assignments
	if p > 1 {
		p = 1
	}
	return p
}

// wilsonInterval is the Wilson score interval for a proportion, clamped to
// [0,1]. Preferred over the Wald interval for proportions near the edges,
// which is exactly where strong effects put CL.
func wilsonInterval(p, n, z float64) (lo, hi float64) {
	if n <= 0 || !isFinite(p) {
		return math.NaN(), math.NaN()
	}
	z2 := z * z
	den := 1 + z2/n
	center := p + z2/(2*n)
	margin := z * math.Sqrt((p*(1-p)+z2/(4*n))/n)
	lo = (center - margin) / den
	hi = (center + margin) / den
	if lo < 0 {
		lo = 0
	}
	if hi > 1 {
		hi = 1
	}
	return lo, hi
}
