package engine

import (
	"math"
	"sort"
)

// Descriptive primitives shared by every other component in this package.
//
// All functions here follow the engine-wide degradation contract: degenerate
// input (empty slices, too few valid pairs, zero variance) produces NaN, not
// an error. Non-finite values are skipped pairwise at the point of use so a
// single bad sample never poisons a whole result.

// Quantile returns the linear-interpolation order statistic of values at
// q ∈ [0,1]. Non-finite values are ignored. Returns NaN for empty input.
func Quantile(values []float64, q float64) float64 {
	clean := finiteOnly(values)
	if len(clean) == 0 || math.IsNaN(q) {
		return math.NaN()
	}
	if q <= 0 {
		return sliceMin(clean)
	}
	if q >= 1 {
		return sliceMax(clean)
	}

	sorted := make([]float64, len(clean))
	copy(sorted, clean)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Pearson computes the Pearson correlation over pairwise-finite elements of
// x and y. Indices where either value is non-finite are skipped silently.
// Returns NaN when fewer than 2 valid pairs remain or either side has zero
// variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	pairs := 0
	for i := 0; i < n; i++ {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
		pairs++
	}
	if pairs < 2 {
		return math.NaN()
	}

	fn := float64(pairs)
	cov := sumXY - sumX*sumY/fn
	varX := sumXX - sumX*sumX/fn
	varY := sumYY - sumY*sumY/fn
	den := math.Sqrt(varX * varY)
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}

	r := cov / den
	// Clamp floating-point overshoot.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// PearsonPairs is Pearson plus the count of valid pairs used.
func PearsonPairs(x, y []float64) (float64, int) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	pairs := 0
	for i := 0; i < n; i++ {
		if isFinite(x[i]) && isFinite(y[i]) {
			pairs++
		}
	}
	return Pearson(x, y), pairs
}

// Ranks converts values to 1-based ranks with average-rank tie handling.
// Ties share the mean of the rank positions they occupy.
func Ranks(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, v := range values {
		pairs[i] = pair{value: v, index: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		// Average rank across the tie group.
		avgRank := float64(i+1) + float64(j-i-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}
	return ranks
}

// Spearman computes the rank correlation of x and y: pairwise-finite
// filtering, average-rank ties, then Pearson on the ranks.
func Spearman(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var fx, fy []float64
	for i := 0; i < n; i++ {
		if isFinite(x[i]) && isFinite(y[i]) {
			fx = append(fx, x[i])
			fy = append(fy, y[i])
		}
	}
	if len(fx) < 2 {
		return math.NaN()
	}
	return Pearson(Ranks(fx), Ranks(fy))
}

// PartialCorrelation correlates x and y after removing the linear influence
// of the control columns: both sides are residualized against an
// intercept-augmented design matrix of the controls via ordinary least
// squares, then the residuals are correlated. When the normal-equation
// matrix is singular (collinear controls) it falls back to the plain
// Pearson correlation rather than failing.
func PartialCorrelation(x, y []float64, controls [][]float64) float64 {
	if len(controls) == 0 {
		return Pearson(x, y)
	}

	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for _, c := range controls {
		if len(c) < n {
			n = len(c)
		}
	}

	// Rows where x, y, and every control are finite.
	var rows []int
	for i := 0; i < n; i++ {
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
			rows = append(rows, i)
		}
	}
	p := len(controls) + 1 // intercept column
	if len(rows) <= p {
		return Pearson(x, y)
	}

	design := make([][]float64, len(rows))
	xv := make([]float64, len(rows))
	yv := make([]float64, len(rows))
	for r, i := range rows {
		row := make([]float64, p)
		row[0] = 1
		for c, ctrl := range controls {
			row[c+1] = ctrl[i]
		}
		design[r] = row
		xv[r] = x[i]
		yv[r] = y[i]
	}

	resX, okX := olsResiduals(design, xv)
	resY, okY := olsResiduals(design, yv)
	if !okX || !okY {
		return Pearson(x, y)
	}
	return Pearson(resX, resY)
}

// olsResiduals solves the normal equations (XᵀX)β = Xᵀy via Gauss–Jordan
// elimination with partial pivoting and returns y − Xβ. The second return is
// false when XᵀX is singular.
func olsResiduals(design [][]float64, y []float64) ([]float64, bool) {
	n := len(design)
	if n == 0 {
		return nil, false
	}
	p := len(design[0])

	xtx := make([][]float64, p)
	xty := make([]float64, p)
	for i := 0; i < p; i++ {
		xtx[i] = make([]float64, p)
	}
	for r := 0; r < n; r++ {
		for i := 0; i < p; i++ {
			xty[i] += design[r][i] * y[r]
			for j := 0; j < p; j++ {
				xtx[i][j] += design[r][i] * design[r][j]
			}
		}
	}

	beta, ok := solveGaussJordan(xtx, xty)
	if !ok {
		return nil, false
	}

	res := make([]float64, n)
	for r := 0; r < n; r++ {
		fitted := 0.0
		for i := 0; i < p; i++ {
			fitted += design[r][i] * beta[i]
		}
		res[r] = y[r] - fitted
	}
	return res, true
}

// solveGaussJordan solves a·x = b in place with partial pivoting.
func solveGaussJordan(a [][]float64, b []float64) ([]float64, bool) {
	p := len(a)
	m := make([][]float64, p)
	for i := 0; i < p; i++ {
		m[i] = make([]float64, p+1)
		copy(m[i], a[i])
		m[i][p] = b[i]
	}

	const singularEps = 1e-12
	for col := 0; col < p; col++ {
		// Partial pivot: largest absolute value in this column.
		pivot := col
		for r := col + 1; r < p; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < singularEps {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		inv := 1.0 / m[col][col]
		for j := col; j <= p; j++ {
			m[col][j] *= inv
		}
		for r := 0; r < p; r++ {
			if r == col || m[r][col] == 0 {
				continue
			}
			factor := m[r][col]
			for j := col; j <= p; j++ {
				m[r][j] -= factor * m[col][j]
			}
		}
	}

	sol := make([]float64, p)
	for i := 0; i < p; i++ {
		sol[i] = m[i][p]
	}
	return sol, true
}

// ============================================================================
// SMALL HELPERS
// ============================================================================

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func sliceMin(values []float64) float64 {
	m := values[0]
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

func sliceMax(values []float64) float64 {
	m := values[0]
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
